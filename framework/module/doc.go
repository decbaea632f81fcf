// Package module defines the unit goboot hands to the container and the
// catalog modules are imported from.
//
// A module registers itself from an init function, the way database/sql
// drivers do:
//
//	func init() {
//	    module.Define("example.com/billing",
//	        module.WithMembers(&container.Component{Key: "invoices", Factory: newInvoices}),
//	        module.WithScanners(handlerScanner{}),
//	    )
//	}
//
// Callers then refer to modules by name, by handle, or through any value the
// module defines:
//
//	mods, err := module.Normalize(module.Default, []any{"example.com/billing", billing.Invoices{}})
package module
