/*
Package logging offers a client for emitting log entries from EdgeKV
WebAssembly functions to the host runtime.

The package exposes a small interface with convenience methods for common log
levels (Info, Warn, Error, Debug, Trace). Delivery is fire-and-forget through
the host logger capability; a failed log call never fails the caller.
*/
package logging
