// Package viewcontext selects the data bindings that apply to a template.
//
// A Rule pairs a payload with a predicate over template identifiers. Global
// rules match every identifier, Literal rules match identifiers containing
// their needle and Pattern rules match identifiers their regular expression
// finds a match in. A Registry keeps rules in registration order and merges
// the payloads of every matching rule, later rules overwriting earlier keys:
//
//	registry := viewcontext.NewRegistry()
//	registry.Add(viewcontext.NewGlobal(map[string]any{"site": "Acme"}))
//	admin, err := viewcontext.NewPattern(`^admin/`, map[string]any{"layout": "admin"})
//	if err != nil {
//		return err
//	}
//	registry.Add(admin)
//	data := registry.Resolve("admin/users") // {"site": "Acme", "layout": "admin"}
//
// Rules can also be declared in JSON or YAML files and read with LoadFS.
package viewcontext
