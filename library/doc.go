// Package library loads equation libraries: trees of YAML, JSON or TOML
// documents whose leaves are formulas, arranged in folders that carry
// inheritable default variables.
//
// A folder becomes a [Directory]. Each document in it becomes a [Group],
// except a document named "variables", which becomes the folder's
// [VariableDocument]. Defaults flow from the root down; a folder's own
// variables shadow those inherited from its ancestors.
//
// Items are addressed by "::"-separated paths:
//
//	turbine::capex_12MW
//	array::cable_cost * (1 + contingency::array)
//	np.exp(turbine::decay) + 2
//
// A path whose last segment ends in a power ("_8MW") or year ("_2030")
// suffix that is absent from its Group may be resolved from its siblings by
// nearest match or linear interpolation, according to [Policy].
package library
