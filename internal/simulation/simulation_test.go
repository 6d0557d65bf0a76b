package simulation

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogue(t *testing.T) {
	list := DefaultCatalogue().List()
	require.Len(t, list, 4)

	ids := []string{}
	for _, s := range list {
		ids = append(ids, s.ID)
		assert.NotEmpty(t, s.Title)
		assert.NotEmpty(t, s.Participants)
		assert.NotEmpty(t, s.Outcomes.Best)
		assert.NotEmpty(t, s.Outcomes.Worst)
		assert.NotEmpty(t, s.Outcomes.Likely)
	}
	assert.Equal(t, []string{"founder-leaving", "ip-dispute", "investor-dilution", "regulatory-compliance"}, ids)
}

func TestCatalogue_Get(t *testing.T) {
	c := DefaultCatalogue()

	s, err := c.Get("ip-dispute")
	require.NoError(t, err)
	assert.Equal(t, "Intellectual Property", s.Category)
	assert.Equal(t, "High", s.Complexity)

	_, err = c.Get("alien-invasion")
	assert.ErrorIs(t, err, ErrUnknownScenario)
}

func TestParseCatalogue_Rejects(t *testing.T) {
	tests := map[string]string{
		"not yaml":     "- id: [",
		"missing id":   "- title: Untitled",
		"duplicate id": "- id: a\n- id: a",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalogue([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestRunner_Lifecycle(t *testing.T) {
	clock := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)
	r := NewRunner(DefaultCatalogue(), 0, nil)
	r.now = func() time.Time { return clock }

	assert.Equal(t, Run{State: StateIdle}, r.Status())

	run, err := r.Start("founder-leaving")
	require.NoError(t, err)
	assert.Equal(t, StateRunning, run.State)
	assert.Equal(t, "founder-leaving", run.Scenario.ID)
	assert.Equal(t, clock.Add(DefaultRunDuration), run.CompletesAt)

	clock = clock.Add(2 * time.Second)
	assert.Equal(t, StateRunning, r.Status().State)

	clock = clock.Add(time.Second)
	assert.Equal(t, StateCompleted, r.Status().State)

	run, err = r.Start("ip-dispute")
	require.NoError(t, err)
	assert.Equal(t, StateRunning, run.State, "starting again replaces the run")
	assert.Equal(t, "ip-dispute", run.Scenario.ID)

	assert.Equal(t, Run{State: StateIdle}, r.Reset())
	assert.Equal(t, StateIdle, r.Status().State)
}

func TestRunner_UnknownScenarioKeepsRun(t *testing.T) {
	r := NewRunner(DefaultCatalogue(), time.Hour, nil)
	_, err := r.Start("investor-dilution")
	require.NoError(t, err)

	_, err = r.Start("nope")
	assert.ErrorIs(t, err, ErrUnknownScenario)
	assert.Equal(t, "investor-dilution", r.Status().Scenario.ID)
}

func TestRun_JSON(t *testing.T) {
	data, err := json.Marshal(Run{State: StateIdle})
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"idle"}`, string(data))
}
