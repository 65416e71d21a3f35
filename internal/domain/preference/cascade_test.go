package preference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioState() State {
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

// allStates enumerates every combination of the declared keys
func allStates() []State {
	keys := AllKeys()
	var out []State
	for mask := 0; mask < 1<<len(keys); mask++ {
		s := State{}
		for i, k := range keys {
			s[k] = mask&(1<<i) != 0
		}
		out = append(out, s)
	}
	return out
}

func TestApplyToggle_ParentOffDisablesChildren(t *testing.T) {
	for _, rule := range Rules() {
		for _, s := range allStates() {
			next := ApplyToggle(s, rule.Parent, false)

			assert.False(t, next[rule.Parent])
			for _, child := range rule.Children {
				assert.False(t, next[child], "child %s of %s should be off", child, rule.Parent)
			}
		}
	}
}

func TestApplyToggle_ParentOnKeepsChildren(t *testing.T) {
	for _, rule := range Rules() {
		for _, s := range allStates() {
			next := ApplyToggle(s, rule.Parent, true)

			assert.True(t, next[rule.Parent])
			for _, child := range rule.Children {
				assert.Equal(t, s[child], next[child])
			}
		}
	}
}

func TestApplyToggle_ChildOnEnablesParent(t *testing.T) {
	for _, rule := range Rules() {
		for _, child := range rule.Children {
			for _, s := range allStates() {
				next := ApplyToggle(s, child, true)

				assert.True(t, next[child])
				assert.True(t, next[rule.Parent], "parent %s should follow child %s", rule.Parent, child)
			}
		}
	}
}

func TestApplyToggle_ChildOffTouchesNothingElse(t *testing.T) {
	for _, rule := range Rules() {
		for _, child := range rule.Children {
			for _, s := range allStates() {
				next := ApplyToggle(s, child, false)

				assert.False(t, next[child])
				for _, k := range AllKeys() {
					if k == child {
						continue
					}
					assert.Equal(t, s[k], next[k], "toggling %s off changed %s", child, k)
				}
			}
		}
	}
}

func TestApplyToggle_Idempotent(t *testing.T) {
	for _, k := range AllKeys() {
		for _, value := range []bool{true, false} {
			for _, s := range allStates() {
				once := ApplyToggle(s, k, value)
				twice := ApplyToggle(once, k, value)
				assert.Equal(t, once, twice, "key %s value %v", k, value)
			}
		}
	}
}

func TestApplyToggle_PauseAllIsIndependent(t *testing.T) {
	for _, value := range []bool{true, false} {
		for _, s := range allStates() {
			next := ApplyToggle(s, KeyPauseAll, value)

			assert.Equal(t, value, next[KeyPauseAll])
			for _, k := range AllKeys() {
				if k != KeyPauseAll {
					assert.Equal(t, s[k], next[k])
				}
			}
		}
	}
}

func TestApplyToggle_DoesNotMutateInput(t *testing.T) {
	s := scenarioState()
	before := s.Clone()

	_ = ApplyToggle(s, KeyEmailNotifications, false)

	assert.Equal(t, before, s)
}

func TestApplyToggle_EmailOffScenario(t *testing.T) {
	next := ApplyToggle(scenarioState(), KeyEmailNotifications, false)

	assert.False(t, next[KeyEmailNotifications])
	assert.False(t, next[KeyFeedbackEmails])
	assert.False(t, next[KeyReminderEmails])
	assert.False(t, next[KeyNewsletterEmails])
	assert.True(t, next[KeySMSNotifications])
	assert.True(t, next[KeyFlipitWebNotifications])
	assert.False(t, next[KeyPauseAll])
}

func TestApplyToggle_FeedbackOnAfterEmailOffScenario(t *testing.T) {
	off := ApplyToggle(scenarioState(), KeyEmailNotifications, false)

	next := ApplyToggle(off, KeyFeedbackEmails, true)

	assert.True(t, next[KeyFeedbackEmails])
	assert.True(t, next[KeyEmailNotifications])
	assert.False(t, next[KeyReminderEmails])
	assert.False(t, next[KeyNewsletterEmails])
}

func TestApplyToggle_UnknownKeyPanics(t *testing.T) {
	assert.Panics(t, func() {
		ApplyToggle(DefaultState(), Key("darkMode"), true)
	})
}

func TestParseKey(t *testing.T) {
	for _, k := range AllKeys() {
		got, err := ParseKey(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := ParseKey("EmailNotifications")
	assert.ErrorIs(t, err, ErrUnknownKey)

	_, err = ParseKey("")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestDependencyTable(t *testing.T) {
	parent, ok := ParentOf(KeyNewsletterEmails)
	require.True(t, ok)
	assert.Equal(t, KeyEmailNotifications, parent)

	_, ok = ParentOf(KeyPauseAll)
	assert.False(t, ok)

	assert.True(t, IsParent(KeySMSNotifications))
	assert.Empty(t, ChildrenOf(KeySMSNotifications))
	assert.ElementsMatch(t,
		[]Key{KeyFeedbackEmails, KeyReminderEmails, KeyNewsletterEmails},
		ChildrenOf(KeyEmailNotifications),
	)

	// Returned slices are copies
	children := ChildrenOf(KeyEmailNotifications)
	children[0] = KeyPauseAll
	assert.Equal(t, KeyFeedbackEmails, ChildrenOf(KeyEmailNotifications)[0])
}

func TestDefaultState(t *testing.T) {
	s := DefaultState()

	assert.Len(t, s, len(AllKeys()))
	assert.False(t, s[KeyPauseAll])
	assert.False(t, s[KeyNewsletterEmails])
	assert.True(t, s[KeyEmailNotifications])
	assert.Equal(t,
		[]Key{KeyEmailNotifications, KeyFeedbackEmails, KeyFlipitWebNotifications, KeyReminderEmails, KeySMSNotifications},
		s.Enabled(),
	)
}

func TestNewStateResponse(t *testing.T) {
	resp := NewStateResponse(DefaultState())

	require.Len(t, resp.Preferences, len(AllKeys()))
	assert.Equal(t, KeyPauseAll, resp.Preferences[0].Key)
	assert.Nil(t, resp.Preferences[0].Parent)

	feedback := resp.Preferences[2]
	assert.Equal(t, KeyFeedbackEmails, feedback.Key)
	require.NotNil(t, feedback.Parent)
	assert.Equal(t, KeyEmailNotifications, *feedback.Parent)
	assert.True(t, resp.Values[KeyEmailNotifications])
}
