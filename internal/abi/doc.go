// Package abi provides internal arithmetic helpers shared by the layout and
// witlayout packages.
//
// # Contents
//
//   - helpers.go: alignment padding and overflow-checked arithmetic
//   - disc.go: discriminant sizing for tagged layouts
//
// This package is internal to the module.
package abi
