package domain

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
)

// Votes maps a delegate to the weight it gives each delegate or policy.
type Votes map[uuid.UUID]map[uuid.UUID]float64

// Topic is a full liquid democracy ballot: who may vote, what can be voted
// for, and the votes cast so far.
type Topic struct {
	ID          uuid.UUID            `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Delegates   map[uuid.UUID]string `json:"delegates"`
	Policies    map[uuid.UUID]string `json:"policies"`
	Votes       Votes                `json:"votes"`
}

func NewTopic(title, description string) *Topic {
	return &Topic{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Delegates:   make(map[uuid.UUID]string),
		Policies:    make(map[uuid.UUID]string),
		Votes:       make(Votes),
	}
}

// AddDelegate registers a delegate under a new id. It returns false when the
// nickname is taken.
func (t *Topic) AddDelegate(nickname string) (uuid.UUID, bool) {
	return addUnique(&t.Delegates, nickname)
}

// AddPolicy registers a policy under a new id. It returns false when the
// title is taken.
func (t *Topic) AddPolicy(title string) (uuid.UUID, bool) {
	return addUnique(&t.Policies, title)
}

func addUnique(names *map[uuid.UUID]string, name string) (uuid.UUID, bool) {
	if *names == nil {
		*names = make(map[uuid.UUID]string)
	}
	for _, existing := range *names {
		if existing == name {
			return uuid.Nil, false
		}
	}
	id := uuid.New()
	(*names)[id] = name
	return id, true
}

// CastVote sets the weight src gives target, replacing an earlier vote.
func (t *Topic) CastVote(src, target uuid.UUID, weight float64) {
	if t.Votes == nil {
		t.Votes = make(Votes)
	}
	if t.Votes[src] == nil {
		t.Votes[src] = make(map[uuid.UUID]float64)
	}
	t.Votes[src][target] = weight
}

// Validate reports ErrInvalidTopic when a vote comes from anyone but a
// delegate, goes to an unknown id, or carries a weight that is not finite.
func (t *Topic) Validate() error {
	for src, votes := range t.Votes {
		if _, ok := t.Delegates[src]; !ok {
			return fmt.Errorf("%w: %s is not a delegate", ErrInvalidTopic, src)
		}
		for target, weight := range votes {
			_, isDelegate := t.Delegates[target]
			_, isPolicy := t.Policies[target]
			if !isDelegate && !isPolicy {
				return fmt.Errorf("%w: vote from %s to unknown %s", ErrInvalidTopic, src, target)
			}
			if math.IsNaN(weight) || math.IsInf(weight, 0) {
				return fmt.Errorf("%w: weight from %s to %s is not finite", ErrInvalidTopic, src, target)
			}
		}
	}
	return nil
}

// VoteData strips names and descriptions off the topic.
func (t *Topic) VoteData() *VoteData {
	data := &VoteData{
		Delegates: sortedIDs(t.Delegates),
		Policies:  sortedIDs(t.Policies),
		Votes:     make(Votes, len(t.Votes)),
	}
	for src, votes := range t.Votes {
		data.Votes[src] = copyWeights(votes)
	}
	return data
}

// DummyTopic is a small ready made topic: three delegates choosing fruit.
func DummyTopic() *Topic {
	topic := NewTopic("dummy", "which fruit")

	alice, _ := topic.AddDelegate("alice")
	bob, _ := topic.AddDelegate("bob")
	charlie, _ := topic.AddDelegate("charlie")

	apples, _ := topic.AddPolicy("apples")
	bananas, _ := topic.AddPolicy("bananas")
	topic.AddPolicy("oranges")

	topic.CastVote(alice, apples, 1)
	topic.CastVote(bob, bananas, 1)
	topic.CastVote(charlie, bananas, 1)

	return topic
}

// VoteData is what calculation modules receive: ids and weights only.
type VoteData struct {
	Delegates []uuid.UUID `json:"delegates"`
	Policies  []uuid.UUID `json:"policies"`
	Votes     Votes       `json:"votes"`
}

// Normalized scales every delegate's weights to sum to one. Delegates whose
// weights sum to zero are copied unchanged.
func (d *VoteData) Normalized() Votes {
	out := make(Votes, len(d.Votes))
	for src, votes := range d.Votes {
		sum := 0.0
		for _, w := range votes {
			sum += w
		}
		weights := copyWeights(votes)
		if sum != 0 {
			for target := range weights {
				weights[target] /= sum
			}
		}
		out[src] = weights
	}
	return out
}

// OnlyPolicyVoting drops votes cast to delegates.
func (d *VoteData) OnlyPolicyVoting() Votes {
	return d.filter(d.Delegates)
}

// OnlyDelegateVoting drops votes cast to policies.
func (d *VoteData) OnlyDelegateVoting() Votes {
	return d.filter(d.Policies)
}

func (d *VoteData) filter(drop []uuid.UUID) Votes {
	skip := make(map[uuid.UUID]struct{}, len(drop))
	for _, id := range drop {
		skip[id] = struct{}{}
	}

	out := make(Votes, len(d.Votes))
	for src, votes := range d.Votes {
		kept := make(map[uuid.UUID]float64, len(votes))
		for target, w := range votes {
			if _, ok := skip[target]; !ok {
				kept[target] = w
			}
		}
		out[src] = kept
	}
	return out
}

// Hash identifies the delegates, policies and votes. Equal data hashes
// equally regardless of map order.
func (d *VoteData) Hash() []byte {
	delegates := sha256.New()
	for _, id := range sortIDs(d.Delegates) {
		delegates.Write(id[:])
	}

	policies := sha256.New()
	for _, id := range sortIDs(d.Policies) {
		policies.Write(id[:])
	}

	votes := sha256.New()
	var buf [8]byte
	for _, src := range sortedIDs(d.Votes) {
		votes.Write(src[:])
		for _, target := range sortedIDs(d.Votes[src]) {
			votes.Write(target[:])
			binary.BigEndian.PutUint64(buf[:], math.Float64bits(d.Votes[src][target]))
			votes.Write(buf[:])
		}
	}

	h := sha256.New()
	h.Write(delegates.Sum(nil))
	h.Write(policies.Sum(nil))
	h.Write(votes.Sum(nil))
	return h.Sum(nil)
}

func sortedIDs[V any](m map[uuid.UUID]V) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	return sortIDs(ids)
}

func sortIDs(ids []uuid.UUID) []uuid.UUID {
	sorted := append([]uuid.UUID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return bytes.Compare(sorted[i][:], sorted[j][:]) < 0 })
	return sorted
}

func copyWeights(votes map[uuid.UUID]float64) map[uuid.UUID]float64 {
	out := make(map[uuid.UUID]float64, len(votes))
	for target, w := range votes {
		out[target] = w
	}
	return out
}
