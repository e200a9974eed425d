package moderation

// DefaultSafeLabels is the fixed set appended after the caller labels.
var DefaultSafeLabels = []string{
	"safe appropriate content",
	"everyday life",
	"news anchor",
	"social media post",
	"landscape",
	"harmless interaction",
}

// LabelSet is the caller labels followed by the safe labels. Positions
// [0, NumUnsafe) are caller labels, [NumUnsafe, Len) are safe labels.
type LabelSet struct {
	labels    []string
	numUnsafe int
}

func NewLabelSet(unsafe, safe []string) LabelSet {
	labels := make([]string, 0, len(unsafe)+len(safe))
	labels = append(labels, unsafe...)
	labels = append(labels, safe...)
	return LabelSet{labels: labels, numUnsafe: len(unsafe)}
}

func (l LabelSet) Len() int {
	return len(l.labels)
}

func (l LabelSet) NumUnsafe() int {
	return l.numUnsafe
}

func (l LabelSet) Labels() []string {
	out := make([]string, len(l.labels))
	copy(out, l.labels)
	return out
}

func (l LabelSet) Unsafe() []string {
	out := make([]string, l.numUnsafe)
	copy(out, l.labels[:l.numUnsafe])
	return out
}

func (l LabelSet) Safe() []string {
	out := make([]string, len(l.labels)-l.numUnsafe)
	copy(out, l.labels[l.numUnsafe:])
	return out
}

// Rewrite returns a new set with fn applied to every label. The partition is
// preserved.
func (l LabelSet) Rewrite(fn func(string) string) LabelSet {
	labels := make([]string, len(l.labels))
	for i, label := range l.labels {
		labels[i] = fn(label)
	}
	return LabelSet{labels: labels, numUnsafe: l.numUnsafe}
}

// ProbabilityVector holds one probability per LabelSet entry.
type ProbabilityVector []float64

// Sum adds the probabilities in [from, to).
func (p ProbabilityVector) Sum(from, to int) float64 {
	if from < 0 {
		from = 0
	}
	if to > len(p) {
		to = len(p)
	}
	var total float64
	for i := from; i < to; i++ {
		total += p[i]
	}
	return total
}
