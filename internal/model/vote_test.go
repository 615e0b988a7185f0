package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveVote(t *testing.T) {
	up := &PostVote{UserID: 1, PostID: 10, Value: Upvote}
	down := &PostVote{UserID: 1, PostID: 10, Value: Downvote}

	tests := []struct {
		name      string
		existing  *PostVote
		requested int8
		want      VoteChange
	}{
		{"first upvote", nil, Upvote, VoteChange{Op: VoteCreate, Value: 1, Delta: 1}},
		{"first downvote", nil, Downvote, VoteChange{Op: VoteCreate, Value: -1, Delta: -1}},
		{"retract upvote", up, Upvote, VoteChange{Op: VoteRetract, Value: 0, Delta: -1}},
		{"retract downvote", down, Downvote, VoteChange{Op: VoteRetract, Value: 0, Delta: 1}},
		{"flip up to down", up, Downvote, VoteChange{Op: VoteFlip, Value: -1, Delta: -2}},
		{"flip down to up", down, Upvote, VoteChange{Op: VoteFlip, Value: 1, Delta: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveVote(tt.existing, tt.requested))
		})
	}
}
