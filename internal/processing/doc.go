// Package processing implements the numeric preprocessing applied to a
// validated measurement table before download.
//
// A Frame holds samples as rows and measurements as columns. Three kinds
// of steps exist and a Pipeline always applies them in the same order:
//
//	normalization   row-wise: sum, median, reference-sample (PQN)
//	transformation  element-wise: log2, log10, squareroot, cuberoot
//	scaling         column-wise, mean centred: auto, pareto, range, vast, level
//
// Every function returns a new Frame and leaves its input untouched. The
// formulas follow MetaboAnalyst so that results can be compared against it.
package processing
