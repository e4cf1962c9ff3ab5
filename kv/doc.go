/*
Package kv provides a client for the EdgeKV key-value capability from
WebAssembly guest functions.

A Store is a handle to one host-bound kv namespace, validated once with
Open. Requests travel to the host as JSON envelopes over waPC; values are
carried as raw bytes and metadata as arbitrary JSON. Zero-value Config
options fall back to sensible defaults such as sdk.DefaultNamespace and
the default waPC host call.

Reads return typed results rather than errors for absence: Get and
GetWithMetadata return nil for a missing key. Writes and listings are
configured through builders:

	store, err := kv.Open(kv.Config{Store: "ASSETS"})
	if err != nil {
		return err
	}

	err = store.PutText("greeting", "hello").
		Metadata(map[string]int{"rev": 2}).
		ExpirationTTL(600).
		Execute()

	page, err := store.List().Prefix("greet").Limit(100).Execute()

Each builder executes at most once, and each Execute issues exactly one
host call returning one page or one acknowledgement; pagination and retry
policy stay with the caller. Tests can inject custom host behaviour with
Config.HostCall to exercise failure paths without a real host.
*/
package kv
