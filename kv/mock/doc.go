/*
Package mock provides an in-memory host for testing EdgeKV guest functions.

The mock speaks the same JSON wire protocol as a real kvstore host, so it
plugs straight into kv.Config.HostCall and lets guest code run its full
put/get/list/delete paths without a host runtime. It supports seeding,
binding validation, metadata, expiration, prefix filtering, and cursor
pagination with the hosted service's 1000-key page limit.

# Basic Usage

	import (
		"testing"

		"github.com/edgekv-project/sdk/kv"
		"github.com/edgekv-project/sdk/kv/mock"
	)

	func TestSomething(t *testing.T) {
		host := mock.New(mock.Config{
			Seed: map[string]map[string][]byte{
				"ASSETS": {"a": []byte("1")},
			},
		})

		store, err := kv.Open(kv.Config{Store: "ASSETS", HostCall: host.HostCall})
		// store.Get("a") returns "1"
	}

# Binding Validation

When Config.Stores or Config.Seed is set, only those bindings exist and
opening any other name fails the way a real host does. With an empty
Config, any binding is accepted and created on first use.

# Inspecting Calls

	for _, c := range host.Calls {
		// c.Function, c.Store, c.Key
	}

Config.Now overrides the expiration clock, which lets tests expire keys
deterministically without sleeping.
*/
package mock
