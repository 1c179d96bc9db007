// Package scenario solves cost scenarios over an equation library.
//
// A scenario configuration is a flat document of named entries:
//
//	equation_directory: ./equations
//	use_nearest_power: true
//	num_turbines: 80
//	turbine: turbine::capex_12MW * num_turbines
//	installation: vessels::install_12MW
//	capex: turbine + installation
//	lcoe: capex * fixed_charge_rate / aep
//
// Numeric entries are globals, available to every other entry as a default.
// String entries are expressions whose operands are other entries, lookups
// in the equation library, or free input variables. Entries that name
// another document, as in "other.yaml::key", take that document's value.
//
// A [Config] is parsed once. Inputs are then bound with [Config.SetInputs]
// and the whole scenario is solved with [Config.Evaluate], which visits
// entries in dependency order and commits outputs only when all succeed.
package scenario
