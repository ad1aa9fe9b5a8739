package guess

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name        string
		left, right int
		chosen      Side
		want        Result
	}{
		{"right better, picked right", 5, 3, Right, Result{Right, Correct}},
		{"right better, picked left", 5, 3, Left, Result{Right, Wrong}},
		{"left better, picked left", 1, 900, Left, Result{Left, Correct}},
		{"tie", 4, 4, Left, Result{Tie, Tied}},
		{"tie other side", 4, 4, Right, Result{Tie, Tied}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.left, tt.right, tt.chosen))
		})
	}
}

func TestSideValid(t *testing.T) {
	assert.True(t, Left.Valid())
	assert.True(t, Right.Valid())
	assert.False(t, Tie.Valid())
	assert.False(t, Side("middle").Valid())
}

func TestStreak(t *testing.T) {
	var s Streak

	s.Record(Correct)
	s.Record(Correct)
	assert.Equal(t, Streak{Current: 2, Best: 2}, s)

	s.Record(Tied)
	assert.Equal(t, Streak{Current: 2, Best: 2}, s, "ties change nothing")

	s.Record(Wrong)
	assert.Equal(t, Streak{Current: 0, Best: 2, Last: 2}, s)

	s.Record(Correct)
	assert.Equal(t, Streak{Current: 1, Best: 2, Last: 2}, s)

	s.Record(Wrong)
	assert.Equal(t, Streak{Current: 0, Best: 2, Last: 1}, s)
}

func TestCheckOrder(t *testing.T) {
	assert.Equal(t, []bool{false, false, false}, CheckOrder([]int{10, 3, 7}))
	assert.Equal(t, []bool{true, true, true}, CheckOrder([]int{3, 7, 10}))
	assert.Equal(t, []bool{true, false, false}, CheckOrder([]int{3, 10, 7}))
	assert.Equal(t, []bool{true, true, true}, CheckOrder([]int{4, 4, 9}))
	assert.Empty(t, CheckOrder(nil))
}

func dailyPuzzle() *Puzzle {
	return NewPuzzle(map[string]int{"Ten": 10, "Three": 3, "Seven": 7})
}

func TestPuzzle_Submit(t *testing.T) {
	p := dailyPuzzle()

	got, err := p.Submit([]string{"Ten", "Three", "Seven"})
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, false}, got)
	assert.False(t, p.Solved())

	got, err = p.Submit([]string{"Three", "Ten", "Seven"})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, false}, got)

	got, err = p.Submit([]string{"Three", "Seven", "Ten"})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, true}, got)
	assert.True(t, p.Solved())

	assert.Equal(t, [][]bool{
		{false, false, false},
		{true, false, false},
		{true, true, true},
	}, p.History())

	_, err = p.Submit([]string{"Ten", "Three", "Seven"})
	assert.True(t, errors.Is(err, ErrSolved))
	assert.Len(t, p.History(), 3)
}

func TestPuzzle_RepeatedGuess(t *testing.T) {
	p := dailyPuzzle()
	order := []string{"Seven", "Three", "Ten"}

	require.True(t, p.CanSubmit(order))
	_, err := p.Submit(order)
	require.NoError(t, err)

	assert.False(t, p.CanSubmit(order))
	_, err = p.Submit(order)
	assert.True(t, errors.Is(err, ErrRepeatedGuess))
	assert.Len(t, p.History(), 1)

	// Changing the order re-enables submission, and an older order may be
	// tried again once it is no longer the latest.
	other := []string{"Three", "Ten", "Seven"}
	assert.True(t, p.CanSubmit(other))
	_, err = p.Submit(other)
	require.NoError(t, err)
	assert.True(t, p.CanSubmit(order))
}

func TestPuzzle_InvalidOrder(t *testing.T) {
	p := dailyPuzzle()

	for _, order := range [][]string{
		nil,
		{"Ten", "Three"},
		{"Ten", "Three", "Three"},
		{"Ten", "Three", "Eleven"},
		{"Ten", "Three", "Seven", "Seven"},
	} {
		_, err := p.Submit(order)
		assert.True(t, errors.Is(err, ErrInvalidOrder), "order %v", order)
	}
	assert.Empty(t, p.History())
}

func TestPuzzle_HistoryIsCopy(t *testing.T) {
	p := dailyPuzzle()
	_, err := p.Submit([]string{"Ten", "Three", "Seven"})
	require.NoError(t, err)

	h := p.History()
	h[0][0] = true
	assert.False(t, p.History()[0][0])
}

func TestPuzzle_Last(t *testing.T) {
	p := dailyPuzzle()
	assert.Nil(t, p.Last())

	order := []string{"Seven", "Three", "Ten"}
	_, err := p.Submit(order)
	require.NoError(t, err)
	assert.Equal(t, order, p.Last())

	_, err = p.Submit([]string{"Ten"})
	require.Error(t, err)
	assert.Equal(t, order, p.Last(), "rejected orders are not remembered")

	p.Last()[0] = "Ten"
	assert.Equal(t, "Seven", p.Last()[0])
}
