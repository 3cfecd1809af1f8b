// Package ir provides the value model shared by every layer of treeq.
//
// Property values stored in the content tree, literal operands in constraint
// expressions and bind variables all use the sealed IRValue types defined
// here. The package also holds canonical JSON encoding (used for stored
// property values and content hashes) and path helpers for the tree.
//
// All other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float types anywhere - numbers are int64 so comparisons are exact
//   - Stored values use canonical JSON so identical content hashes identically
//   - Paths are absolute, slash separated, and never end in a slash (except "/")
package ir
