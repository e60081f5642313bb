/*
Package tool describes the capabilities a model may invoke and the connections that execute them.

A capability (tool) is a named operation with a description and a JSON schema for its input. The
orchestrator never executes a capability itself, it hands the call to the Connection of the
provider that advertised the name.

# Key Concepts

 1. Spec
    The advertised shape of one capability: Name, Description and InputSchema. Specs are read
    only once discovered.

 2. Connection
    A live handle to a provider. Discover lists the capabilities it serves, Invoke runs one of
    them with a decoded argument object and Close releases the provider.

 3. Connector
    Knows how to open a Connection. Connectors are what configuration produces, connections are
    what the registry holds.

 4. Definition and Local
    Plain Go functions can be served as capabilities. New reflects over the function signature
    to build the input schema, Local bundles definitions into an in-process Connection.

# Usage Examples

	func add(a, b int) int {
		return a + b
	}

	local := tool.NewLocal("calculator",
		tool.Must(add,
			tool.Name("add"),
			tool.Description("Adds two integers"),
			tool.Parameters("a", "b"),
		),
	)

	specs, _ := local.Discover(ctx)
	res, _ := local.Invoke(ctx, "add", map[string]any{"a": 2, "b": 3})
	fmt.Println(res.Text()) // 5

Functions may take a context.Context as their first parameter, it is not part of the schema and
receives the invocation context.
*/
package tool
