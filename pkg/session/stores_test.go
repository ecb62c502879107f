package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"mkulima/database/dbtest"
	"mkulima/entities"
	"mkulima/pkg/evaluation"
	farmerRepoImp "mkulima/pkg/farmer/repositoryImp"
	farmerSvcImp "mkulima/pkg/farmer/serviceImp"
	feedbackRepoImp "mkulima/pkg/feedback/repositoryImp"
	feedbackSvcImp "mkulima/pkg/feedback/serviceImp"
	processRepoImp "mkulima/pkg/process/repositoryImp"
	processSvcImp "mkulima/pkg/process/serviceImp"
	"mkulima/pkg/reading"
)

// TestInterpret_AgainstStores drives the menu over the real services backed
// by sqlite.
func TestInterpret_AgainstStores(t *testing.T) {
	db := dbtest.New(t)
	log := zap.NewNop()

	var stages []string
	engine := evaluation.EngineFunc(func(_ context.Context, crop, stg string, r reading.Set) (*evaluation.Result, error) {
		stages = append(stages, stg)
		return &evaluation.Result{Crop: crop, Stage: stg, Suitable: false, Score: 0.31, Flags: map[string]string{}}, nil
	})

	s := New(Deps{
		Identity:  farmerSvcImp.NewFarmerService(farmerRepoImp.New(db), bcrypt.MinCost, log),
		Processes: processSvcImp.NewProcessService(processRepoImp.New(db), engine, log),
		Feedback:  feedbackSvcImp.NewFeedbackService(feedbackRepoImp.New(db)),
	}, log)
	run := func(trail string) Response { return s.Interpret(context.Background(), trail) }

	assert.Equal(t, "Registration successful. Welcome, Amina.", run("2*F100*Amina*0722*1.5*sandy*secret").Text)
	assert.Equal(t, "Registration failed: a farmer with this ID already exists", run("2*F100*Amina*0722*1.5*sandy*secret").Text)

	assert.Equal(t, Response{Status: Terminal, Text: "Login successful."}, run("1*F100*secret"))
	assert.Equal(t, "Login failed: invalid farmer ID or password", run("1*F100*Secret").Text)
	assert.Equal(t, "Login failed: invalid farmer ID or password", run("1*F999*secret").Text)

	run("4*F100*maize*2*2025-02-01")
	run("4*F100*maize*3*2025-03-01")
	assert.Equal(t, "Processes for F100:\n2025-03-01 maize irrigation\n2025-02-01 maize planting", run("5*F100").Text)

	got := run("9*maize*harvest*90*42*43*20.8*82*6.5*202.9")
	assert.Equal(t, []string{"harvest"}, stages)
	assert.Contains(t, got.Text, "maize at harvest stage: not suitable (score 0.31)")
	assert.Contains(t, got.Text, "No data: N, P, K, temperature, humidity, ph, rainfall")

	run("7*F100*Great app")
	run("7*F100*Great app")
	var rows []entities.Feedback
	require.NoError(t, db.Where("farmer_id = ?", "F100").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.NotEqual(t, rows[0].ID, rows[1].ID)
	for _, r := range rows {
		assert.Equal(t, "Great app", r.Comment)
		assert.Equal(t, "ussd", r.Channel)
	}

	assert.Equal(t, "Could not save feedback: feedback is empty", run("7*F100*").Text)
}
