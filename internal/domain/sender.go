package domain

import (
	"sort"
	"strings"
)

// Sender is a canonical phone number: digits only, no leading '+'.
type Sender string

func CanonicalSender(raw string) Sender {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.TrimSpace(raw) {
		switch r {
		case '+', ' ', '-', '(', ')', '.':
			continue
		}
		b.WriteRune(r)
	}
	return Sender(b.String())
}

func (s Sender) String() string {
	return string(s)
}

// E164 returns the number with a leading '+', as expected by network APIs.
func (s Sender) E164() string {
	return "+" + string(s)
}

// AllowList is an immutable set of senders permitted to use the service.
type AllowList struct {
	numbers map[Sender]struct{}
}

func NewAllowList(numbers ...string) AllowList {
	set := make(map[Sender]struct{}, len(numbers))
	for _, number := range numbers {
		sender := CanonicalSender(number)
		if sender == "" {
			continue
		}
		set[sender] = struct{}{}
	}
	return AllowList{numbers: set}
}

func (a AllowList) Contains(sender Sender) bool {
	_, ok := a.numbers[sender]
	return ok
}

func (a AllowList) Len() int {
	return len(a.numbers)
}

func (a AllowList) Numbers() []Sender {
	numbers := make([]Sender, 0, len(a.numbers))
	for sender := range a.numbers {
		numbers = append(numbers, sender)
	}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	return numbers
}

// Union returns a new list holding the members of both lists.
func (a AllowList) Union(other AllowList) AllowList {
	set := make(map[Sender]struct{}, len(a.numbers)+len(other.numbers))
	for sender := range a.numbers {
		set[sender] = struct{}{}
	}
	for sender := range other.numbers {
		set[sender] = struct{}{}
	}
	return AllowList{numbers: set}
}
