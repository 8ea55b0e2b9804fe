// meta/meta.go
package meta

// STOP_AFTER is the default equilibrium count limit (0 = unlimited).
const STOP_AFTER = 0

// MAX_DEPTH is the default exploration depth limit (0 = unlimited).
const MAX_DEPTH = 0

// MAX_PIVOTS caps the pivots of a single complementary path.
const MAX_PIVOTS = 100000

// TOLERANCE is the default comparison tolerance of the floating field.
const TOLERANCE = 1e-9

// PERTURBATION_NUM/PERTURBATION_DEN is the covering vector entry used to push
// a branch off an equilibrium.
const PERTURBATION_NUM, PERTURBATION_DEN = 1, 1000000

// PERTURBATION is the covering entry as a float. Floating tolerances must stay
// below it or perturbed branches compare equal to zero.
const PERTURBATION = float64(PERTURBATION_NUM) / PERTURBATION_DEN
