package preference

import "sort"

// Key identifies a single notification preference toggle
type Key string

const (
	KeyPauseAll               Key = "pauseAll"
	KeyEmailNotifications     Key = "emailNotifications"
	KeyFeedbackEmails         Key = "feedbackEmails"
	KeyReminderEmails         Key = "reminderEmails"
	KeyNewsletterEmails       Key = "newsletterEmails"
	KeySMSNotifications       Key = "smsNotifications"
	KeyFlipitWebNotifications Key = "flipitWebNotifications"
)

// AllKeys returns every known preference key in display order
func AllKeys() []Key {
	return []Key{
		KeyPauseAll,
		KeyEmailNotifications,
		KeyFeedbackEmails,
		KeyReminderEmails,
		KeyNewsletterEmails,
		KeySMSNotifications,
		KeyFlipitWebNotifications,
	}
}

// DependencyRule declares the children that follow a group parent
type DependencyRule struct {
	Parent   Key
	Children []Key
}

// rules is the cascade table. smsNotifications is a group parent without
// children so it behaves like a standalone toggle.
var rules = []DependencyRule{
	{
		Parent:   KeyEmailNotifications,
		Children: []Key{KeyFeedbackEmails, KeyReminderEmails, KeyNewsletterEmails},
	},
	{
		Parent:   KeySMSNotifications,
		Children: nil,
	},
}

var (
	childrenByParent = map[Key][]Key{}
	parentByChild    = map[Key]Key{}
	knownKeys        = map[Key]struct{}{}
)

func init() {
	for _, k := range AllKeys() {
		knownKeys[k] = struct{}{}
	}
	for _, rule := range rules {
		childrenByParent[rule.Parent] = rule.Children
		for _, child := range rule.Children {
			parentByChild[child] = rule.Parent
		}
	}
}

// Rules returns a copy of the cascade table
func Rules() []DependencyRule {
	out := make([]DependencyRule, len(rules))
	for i, rule := range rules {
		out[i] = DependencyRule{
			Parent:   rule.Parent,
			Children: append([]Key(nil), rule.Children...),
		}
	}
	return out
}

// IsKnown reports whether k is a declared preference key
func IsKnown(k Key) bool {
	_, ok := knownKeys[k]
	return ok
}

// IsParent reports whether k is a group parent
func IsParent(k Key) bool {
	_, ok := childrenByParent[k]
	return ok
}

// ParentOf returns the group parent of a child key
func ParentOf(k Key) (Key, bool) {
	p, ok := parentByChild[k]
	return p, ok
}

// ChildrenOf returns the declared children of a parent key
func ChildrenOf(k Key) []Key {
	return append([]Key(nil), childrenByParent[k]...)
}

// ParseKey converts user input into a Key
func ParseKey(s string) (Key, error) {
	k := Key(s)
	if !IsKnown(k) {
		return "", ErrUnknownKey
	}
	return k, nil
}

// State maps each preference key to its current value
type State map[Key]bool

// DefaultState is the snapshot a user starts with
func DefaultState() State {
	return State{
		KeyPauseAll:               false,
		KeyEmailNotifications:     true,
		KeyFeedbackEmails:         true,
		KeyReminderEmails:         true,
		KeyNewsletterEmails:       false,
		KeySMSNotifications:       true,
		KeyFlipitWebNotifications: true,
	}
}

// Clone returns an independent copy of s
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Enabled returns the keys currently switched on, sorted
func (s State) Enabled() []Key {
	var out []Key
	for k, v := range s {
		if v {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
