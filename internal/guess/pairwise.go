/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package guess scores player guesses against resolved ranks.
package guess

// Side names a card position in a pairwise round, or the lack of a winner.
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
	Tie   Side = "tie"
)

// Valid reports whether s is a side a player can pick.
func (s Side) Valid() bool {
	return s == Left || s == Right
}

// Outcome classifies a single guess.
type Outcome string

const (
	Correct Outcome = "correct"
	Wrong   Outcome = "wrong"
	Tied    Outcome = "tie"
)

// Compare returns the side holding the better (lower) rank, or Tie.
func Compare(leftRank, rightRank int) Side {
	switch {
	case leftRank < rightRank:
		return Left
	case rightRank < leftRank:
		return Right
	}
	return Tie
}

// Result is the evaluation of a pairwise guess.
type Result struct {
	CorrectSide Side    `json:"correct_side"`
	Outcome     Outcome `json:"outcome"`
}

// Evaluate scores the player's chosen side.
func Evaluate(leftRank, rightRank int, chosen Side) Result {
	better := Compare(leftRank, rightRank)

	switch {
	case better == Tie:
		return Result{CorrectSide: Tie, Outcome: Tied}
	case chosen == better:
		return Result{CorrectSide: better, Outcome: Correct}
	}
	return Result{CorrectSide: better, Outcome: Wrong}
}

// Streak counts consecutive correct pairwise guesses. Last holds the streak
// that the most recent wrong guess ended.
type Streak struct {
	Current int `json:"streak"`
	Best    int `json:"best"`
	Last    int `json:"last"`
}

// Record applies an outcome. Ties leave the streak alone.
func (s *Streak) Record(o Outcome) {
	switch o {
	case Correct:
		s.Current++
		if s.Current > s.Best {
			s.Best = s.Current
		}
	case Wrong:
		s.Last = s.Current
		s.Current = 0
	}
}
