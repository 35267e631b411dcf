// Package cli builds the gradbook command tree.
//
// Commands:
//
//	run [cells...]  Execute notebook cells
//	list            List cells
//	graph CELL      Print the DOT graph a cell draws
//	version         Print the version
package cli
