// Package resolve evaluates expression trees against a query database.
//
// GetLevelValue reduces a level expression to one number in a target unit,
// averaged over a data window. GetProfileVector reduces a profile expression
// to one value per period of a scenario horizon. Both walk the tree
// recursively: references are looked up in the database, time vectors are
// read through their time index, and operation nodes apply their operators
// left to right.
package resolve
