// Package puzzle documents the shape of two search algorithms specific
// to one particular program's puzzles: a memoised Ackermann-like
// recursion to find a teleporter register value, and a path search
// over a 4x4 arithmetic grid to reach a vault. Both are declared but
// left unimplemented, since they depend entirely on one program's room
// text and solution rather than on anything about the VM or harness
// itself.
package puzzle

// AckermannLike computes the confirmation-routine function used by the
// teleporter puzzle: a 3-argument, memoised variant of the Ackermann
// function parameterized by a register value r7, i.e. f(r7, a, b). A
// full implementation would memoise on (a, b) for a fixed r7 and search
// r7 in 1..32767 for the value that makes f(r7, 4, 1) == 6, then patch
// it into register 7 via Machine.SetRegister or a call trap rather than
// running the exponential-time recursion inside the VM itself.
func AckermannLike(r7, a, b uint16) uint16 {
	panic("puzzle: AckermannLike is unimplemented game content, see doc comment")
}

// VaultPath searches the 4x4 arithmetic grid in the vault puzzle for a
// sequence of moves (north/south/east/west) from the start cell to the
// exit cell that leaves a running total equal to the target weight,
// without revisiting a cell. A full implementation would do a
// depth-bounded DFS/BFS over (position, total, steps) state, using
// Game.SetPosition to track the explored coordinate alongside a cloned
// vm.Machine per branch to explore moves speculatively.
func VaultPath(grid [4][4]int, start, exit [2]int, target int) ([]string, bool) {
	panic("puzzle: VaultPath is unimplemented game content, see doc comment")
}
