// Package launchargs resolves the arguments handed to a mobile app process
// when a test driver launches it.
//
// Three layers contribute, weakest first:
//
//   - baseline: the preconfigured arguments loaded with the configuration,
//     immutable for the life of the process;
//   - overlay: a mutable Store edited between launches via Get, Modify and
//     Reset, persisting until reset;
//   - on-site: the arguments passed to a single LaunchApp call.
//
// Per key, the strongest layer that defines it wins. Mapping a key to Delete
// in the overlay removes it from the result unless an on-site argument
// re-supplies it. The merged set is then filtered against the keys the
// platform's instrumentation layer reserves for itself (see KeyFilter) and
// each value is serialized for the launch mechanism (see Serialize).
//
// Data flow:
//
//	Store.Get() ─┐
//	baseline ────┼─> Resolver.ResolveDetailed ─> KeyFilter ─> SerializeArgs ─> Invoker
//	on-site ─────┘
package launchargs
