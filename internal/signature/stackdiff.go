package signature

import "crashsig/internal/domain"

// DefaultDiffWindow is how many frames beyond the pattern length the stack
// diff considers.
const DefaultDiffWindow = 3

// alignScore orders alignments: lower cost first, then more pattern
// elements kept.
type alignScore struct {
	cost int
	kept int
}

func (a alignScore) better(b alignScore) bool {
	return a.cost < b.cost || (a.cost == b.cost && a.kept > b.kept)
}

func (a alignScore) add(cost, kept int) alignScore {
	return alignScore{cost: a.cost + cost, kept: a.kept + kept}
}

type alignMove int

const (
	moveDiag   alignMove = iota // pattern element aligned with a frame
	moveInsert                  // frame with no pattern element
	moveDelete                  // pattern element with no frame
)

type alignCell struct {
	score alignScore
	move  alignMove
}

// Diff aligns the pattern with the top of the record's stack. It returns the
// alignment cost and a symptom that would match the record. A matching record,
// even one without frames, yields a zero distance and no proposal. Both are nil
// when there is nothing to align against or the proposal would be empty.
func (s *StackFramesSymptom) Diff(rec *domain.CrashRecord) (*int, *StackFramesSymptom) {
	stack := rec.Backtrace()
	if matchFrames(s.patterns, stack) {
		zero := 0
		return &zero, nil
	}
	if len(stack) == 0 {
		return nil, nil
	}

	window := s.window
	if window <= 0 {
		window = DefaultDiffWindow
	}
	if k := len(s.patterns) + window; len(stack) > k {
		stack = stack[:k]
	}

	table := alignFrames(s.patterns, stack)
	p := len(s.patterns)

	// trailing frames are free since matching is anchored at the top only;
	// among equal scores the longest aligned prefix wins
	end := 0
	for j := 1; j <= len(stack); j++ {
		if !table[p][end].score.better(table[p][j].score) {
			end = j
		}
	}

	proposed := traceProposal(s.patterns, stack, table, end)
	if len(proposed) == 0 {
		return nil, nil
	}
	distance := table[p][end].score.cost
	return &distance, newStackFramesSymptom(proposed, s.window)
}

func alignFrames(pats []framePattern, stack []string) [][]alignCell {
	p, k := len(pats), len(stack)
	table := make([][]alignCell, p+1)
	for i := range table {
		table[i] = make([]alignCell, k+1)
	}

	for j := 1; j <= k; j++ {
		table[0][j] = alignCell{score: table[0][j-1].score.add(1, 0), move: moveInsert}
	}
	for i := 1; i <= p; i++ {
		pat := pats[i-1]
		if pat.kind == frameSkip {
			table[i][0] = alignCell{score: table[i-1][0].score.add(0, 1), move: moveDelete}
		} else {
			table[i][0] = alignCell{score: table[i-1][0].score.add(1, 0), move: moveDelete}
		}

		for j := 1; j <= k; j++ {
			var best alignCell
			if pat.kind == frameSkip {
				// the skip wildcard absorbs frames for free
				best = alignCell{score: table[i][j-1].score, move: moveInsert}
				if c := table[i-1][j].score.add(0, 1); c.better(best.score) {
					best = alignCell{score: c, move: moveDelete}
				}
				table[i][j] = best
				continue
			}

			if pat.matchesFrame(stack[j-1]) {
				best = alignCell{score: table[i-1][j-1].score.add(0, 1), move: moveDiag}
			} else {
				best = alignCell{score: table[i-1][j-1].score.add(1, 0), move: moveDiag}
			}
			if c := table[i][j-1].score.add(1, 0); c.better(best.score) {
				best = alignCell{score: c, move: moveInsert}
			}
			if c := table[i-1][j].score.add(1, 0); c.better(best.score) {
				best = alignCell{score: c, move: moveDelete}
			}
			table[i][j] = best
		}
	}
	return table
}

// traceProposal walks the alignment back from (len(pats), end) and rebuilds a
// pattern list: matched elements are kept, mismatched and inserted frames are
// promoted to literal names, deleted elements are dropped.
func traceProposal(pats []framePattern, stack []string, table [][]alignCell, end int) []framePattern {
	var rev []framePattern
	i, j := len(pats), end
	for i > 0 || j > 0 {
		var pat framePattern
		if i > 0 {
			pat = pats[i-1]
		}

		switch table[i][j].move {
		case moveDiag:
			if pat.matchesFrame(stack[j-1]) {
				rev = append(rev, pat)
			} else {
				rev = append(rev, newFramePattern(literalMatch(stack[j-1])))
			}
			i, j = i-1, j-1
		case moveInsert:
			if i == 0 || pat.kind != frameSkip {
				rev = append(rev, newFramePattern(literalMatch(stack[j-1])))
			}
			j--
		case moveDelete:
			if pat.kind == frameSkip {
				rev = append(rev, pat)
			}
			i--
		}
	}

	out := make([]framePattern, 0, len(rev))
	for n := len(rev) - 1; n >= 0; n-- {
		out = append(out, rev[n])
	}
	for len(out) > 0 && out[len(out)-1].isWildcard() {
		out = out[:len(out)-1]
	}
	return out
}
