package searcher

import "nash/meta"

// Defaults for the explorer

const STOP_AFTER = meta.STOP_AFTER
const MAX_DEPTH = meta.MAX_DEPTH
const MAX_PIVOTS = meta.MAX_PIVOTS
