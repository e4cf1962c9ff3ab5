/*
Package hostmock provides a stand-in host for waPC calls in tests.

It validates exactly what a component sends to the EdgeKV host - namespace,
capability, function, and payload - without needing a real host running, and
returns scripted responses or failures.

Why use hostmock?

  - Validate routing: ensure calls use the expected namespace, capability, and function when you set them.
  - Inspect payloads: plug in a PayloadValidator to assert wire contents.
  - Script responses: return custom bytes or simulate failures.
  - Count calls: the Calls field records how many host calls were made,
    which lets tests assert that an operation performed no host call at all.

Quick start

	m, _ := hostmock.New(hostmock.Config{
	  ExpectedNamespace:  "edgekv",
	  ExpectedCapability: "kvstore",
	  ExpectedFunction:   "get",
	  Response: func() []byte { return []byte(`{"status":{"code":200}}`) },
	})

	// Inject into a component under test
	resp, err := m.HostCall("edgekv", "kvstore", "get", []byte(`{"key":"a"}`))

Behavior

  - If Fail is true and Error is set, HostCall returns that error.
  - If Fail is true and Error is nil, HostCall returns ErrOperationFailed.
  - Otherwise, HostCall enforces ExpectedNamespace/Capability/Function and runs
    PayloadValidator when provided. If everything is in order, Response (when set)
    provides the return bytes; otherwise it returns nil.
  - Leave fields blank when you want a wildcard. Only set values are enforced.
*/
package hostmock
