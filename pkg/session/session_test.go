package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"mkulima/entities"
	"mkulima/pkg/apperr"
	"mkulima/pkg/climate"
	"mkulima/pkg/diagnosis"
	"mkulima/pkg/evaluation"
	farmersvc "mkulima/pkg/farmer/service"
	feedbacksvc "mkulima/pkg/feedback/service"
	procsvc "mkulima/pkg/process/service"
	"mkulima/pkg/reading"
	"mkulima/pkg/weather"
)

type fakeIdentity struct {
	logins int
	reg    farmersvc.Registration
}

func (f *fakeIdentity) Login(_ context.Context, id, pw string) (*entities.Farmer, error) {
	f.logins++
	if id == "F100" && pw == "secret" {
		return &entities.Farmer{FarmerID: id}, nil
	}
	return nil, farmersvc.ErrInvalidCredentials
}

func (f *fakeIdentity) Register(_ context.Context, in farmersvc.Registration) (*entities.Farmer, error) {
	f.reg = in
	return &entities.Farmer{FarmerID: in.FarmerID, FullName: in.FullName}, nil
}

type fakeProcesses struct {
	recorded []procsvc.Event
	stages   []string
	sets     []reading.Set
	list     []entities.CropProcess
	evalErr  error
}

func (f *fakeProcesses) Record(_ context.Context, ev procsvc.Event) (*entities.CropProcess, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	f.recorded = append(f.recorded, ev)
	return &entities.CropProcess{FarmerID: ev.FarmerID, Crop: strings.ToLower(ev.Crop), ProcessType: ev.ProcessType, ProcessDate: ev.Date}, nil
}

func (f *fakeProcesses) Evaluate(_ context.Context, crop, stg string, r reading.Set) (*evaluation.Result, error) {
	f.stages = append(f.stages, stg)
	f.sets = append(f.sets, r)
	if f.evalErr != nil {
		return nil, f.evalErr
	}
	return &evaluation.Result{
		Crop: crop, Stage: stg, Suitable: true, Score: 0.87,
		Flags:  map[string]string{"N": "low", "P": "ok", "K": "ok", "temperature": "ok", "humidity": "high", "ph": "ok"},
		Advice: "Increase N",
	}, nil
}

func (f *fakeProcesses) List(_ context.Context, id string) ([]entities.CropProcess, error) {
	return f.list, nil
}

type fakeWeather struct {
	calls int
	err   error
}

func (f *fakeWeather) Current(_ context.Context, city string) (*weather.Conditions, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &weather.Conditions{City: city, Temperature: 22, Humidity: 60, WindSpeed: 3}, nil
}

type fakeRecommender struct{ got []reading.Set }

func (f *fakeRecommender) Recommend(_ context.Context, r reading.Set) (*evaluation.Recommendation, error) {
	f.got = append(f.got, r)
	c := 0.85
	return &evaluation.Recommendation{Prediction: "maize", Confidence: &c, Alternatives: []string{"rice", "beans"}}, nil
}

type diagnoserFunc func(ctx context.Context, symptoms string) (*diagnosis.Result, error)

func (f diagnoserFunc) Diagnose(ctx context.Context, s string) (*diagnosis.Result, error) {
	return f(ctx, s)
}

type fakeFeedback struct {
	mu      sync.Mutex
	entries []feedbacksvc.Entry
}

func (f *fakeFeedback) Submit(_ context.Context, in feedbacksvc.Entry) (*entities.Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if in.FarmerID == "" {
		return nil, apperr.MissingFields("farmers_id")
	}
	f.entries = append(f.entries, in)
	return &entities.Feedback{ID: uint(len(f.entries)), FarmerID: in.FarmerID, Comment: in.Comment}, nil
}

type fixture struct {
	id   *fakeIdentity
	proc *fakeProcesses
	wx   *fakeWeather
	rec  *fakeRecommender
	fb   *fakeFeedback
	s    *Interpreter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{
		id:   &fakeIdentity{},
		proc: &fakeProcesses{},
		wx:   &fakeWeather{},
		rec:  &fakeRecommender{},
		fb:   &fakeFeedback{},
	}
	fx.s = New(Deps{
		Identity:    fx.id,
		Processes:   fx.proc,
		Recommender: fx.rec,
		Weather:     fx.wx,
		Climate:     climate.Default(),
		Diagnoser: diagnoserFunc(func(_ context.Context, s string) (*diagnosis.Result, error) {
			return &diagnosis.Result{Source: diagnosis.FromAI, Disease: "Leaf rust", Remedies: []string{s}}, nil
		}),
		Feedback: fx.fb,
	}, zap.NewNop())
	return fx
}

func (fx *fixture) run(trail string) Response {
	return fx.s.Interpret(context.Background(), trail)
}

func TestInterpret_RootMenu(t *testing.T) {
	fx := newFixture(t)
	for _, trail := range []string{"", "   ", "0", "10", "login", "x*F100*secret", "*1"} {
		got := fx.run(trail)
		assert.Equal(t, Continue, got.Status, trail)
		assert.Equal(t, Menu(), got.Text, trail)
	}
	assert.True(t, strings.HasPrefix(Menu(), "Welcome to Mkulima\n1. Login\n2. Register"))
	assert.Zero(t, fx.id.logins)
}

func TestInterpret_PromptsFollowTrailLength(t *testing.T) {
	ctx := context.Background()
	for _, f := range flows {
		t.Run(f.name, func(t *testing.T) {
			fx := newFixture(t)
			tokens := []string{f.key}
			for k := 0; k < len(f.prompts); k++ {
				got := fx.s.InterpretTokens(ctx, tokens)
				assert.Equal(t, Response{Status: Continue, Text: f.prompts[k]}, got, "after %d answers", k)
				tokens = append(tokens, "1")
			}
			for extra := 0; extra < 3; extra++ {
				got := fx.s.InterpretTokens(ctx, tokens)
				assert.Equal(t, Terminal, got.Status, "with %d tokens", len(tokens))
				assert.NotEmpty(t, got.Text)
				tokens = append(tokens, "1")
			}
		})
	}
}

func TestInterpret_ScenarioLogin(t *testing.T) {
	fx := newFixture(t)

	assert.Equal(t, Response{Status: Continue, Text: "Enter Farmer ID:"}, fx.run("1"))
	assert.Equal(t, Response{Status: Continue, Text: "Enter Password:"}, fx.run("1*F100"))
	assert.Zero(t, fx.id.logins)

	assert.Equal(t, Response{Status: Terminal, Text: "Login successful."}, fx.run("1*F100*secret"))
	assert.Equal(t, 1, fx.id.logins, "the action runs once per request")

	got := fx.run("1*F100*wrong")
	assert.Equal(t, Terminal, got.Status)
	assert.Equal(t, "Login failed: invalid farmer ID or password", got.Text)
}

func TestInterpret_Register(t *testing.T) {
	fx := newFixture(t)
	got := fx.run("2*F200*Jane Wanjiku*0712000000*2.5*loam*pw123")
	assert.Equal(t, Response{Status: Terminal, Text: "Registration successful. Welcome, Jane Wanjiku."}, got)
	assert.Equal(t, farmersvc.Registration{
		FarmerID: "F200", FullName: "Jane Wanjiku", Contact: "0712000000",
		LandSize: "2.5", SoilType: "loam", Password: "pw123", ConfirmPassword: "pw123",
	}, fx.id.reg)
}

func TestInterpret_WeatherAdviceFillsBlanksFromLookup(t *testing.T) {
	fx := newFixture(t)
	got := fx.run("3*Nairobi*-*-*90*42*43*6.5*200")
	require.Equal(t, Terminal, got.Status)
	assert.Equal(t, "Recommended crop: maize (85%)\n"+
		"Also consider: rice, beans\n"+
		"Weather in Nairobi: 22.0C, 60.0% humidity\n"+
		"Suits this weather: Sorghum, Millet, Watermelon, Okra, Sweet Potatoes", got.Text)

	require.Len(t, fx.rec.got, 1)
	assert.Equal(t, reading.Set{N: 90, P: 42, K: 43, Temperature: 22, Humidity: 60, PH: 6.5, Rainfall: 200}, fx.rec.got[0])
}

func TestInterpret_WeatherAdviceEnteredValuesWin(t *testing.T) {
	fx := newFixture(t)
	got := fx.run("3*Nairobi*31*50*90*42*43*6.5*200")
	require.Equal(t, Terminal, got.Status)
	assert.Zero(t, fx.wx.calls)
	assert.Equal(t, 31.0, fx.rec.got[0].Temperature)
	assert.NotContains(t, got.Text, "Weather in")
	assert.Contains(t, got.Text, "Suits this weather: Cotton")

	// one blank still triggers the lookup but keeps the entered value
	fx.run("3*Nairobi*31*-*90*42*43*6.5*200")
	assert.Equal(t, 1, fx.wx.calls)
	assert.Equal(t, 31.0, fx.rec.got[1].Temperature)
	assert.Equal(t, 60.0, fx.rec.got[1].Humidity)
}

func TestInterpret_WeatherAdviceFailures(t *testing.T) {
	fx := newFixture(t)

	got := fx.run("3*Nairobi*-*-*abc*42*43*6.5*200")
	assert.Equal(t, "Could not get crop advice: missing or non-numeric: N", got.Text)
	assert.Zero(t, fx.wx.calls, "validation runs before the lookup")
	assert.Empty(t, fx.rec.got)

	fx.wx.err = apperr.Upstream("weather", "city not found", errors.New("status 404"))
	got = fx.run("3*Atlantis*-*-*90*42*43*6.5*200")
	assert.Equal(t, Response{Status: Terminal, Text: "Could not get crop advice: city not found"}, got)
	assert.Empty(t, fx.rec.got)
}

func TestInterpret_RecordProcess(t *testing.T) {
	fx := newFixture(t)

	got := fx.run("4*F100*Maize*3*2025-03-01")
	assert.Equal(t, Response{Status: Terminal, Text: "Process recorded: maize irrigation on 2025-03-01."}, got)
	require.Len(t, fx.proc.recorded, 1)
	assert.Equal(t, "irrigation", fx.proc.recorded[0].ProcessType)

	fx.run("4*F100*beans*Harvest*2025-04-10")
	assert.Equal(t, "harvest", fx.proc.recorded[1].ProcessType)

	got = fx.run("4*F100*beans*harvest*10/04/2025")
	assert.Equal(t, "Could not record process: date must be YYYY-MM-DD: process_date", got.Text)

	got = fx.run("4*F100*beans*harvest*")
	assert.Equal(t, "Could not record process: missing or non-numeric: process_date", got.Text)
	assert.Len(t, fx.proc.recorded, 2)
}

func TestInterpret_ViewProcesses(t *testing.T) {
	fx := newFixture(t)
	assert.Equal(t, "No processes recorded for F100.", fx.run("5*F100").Text)

	day := func(d int) time.Time { return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC) }
	ok, score := true, 0.87
	fx.proc.list = []entities.CropProcess{
		{Crop: "maize", ProcessType: "irrigation", ProcessDate: day(9), Suitable: &ok, SuitabilityScore: &score},
		{Crop: "maize", ProcessType: "planting", ProcessDate: day(8)},
	}
	for d := 7; d > 2; d-- {
		fx.proc.list = append(fx.proc.list, entities.CropProcess{Crop: "beans", ProcessType: "harvest", ProcessDate: day(d)})
	}

	got := fx.run("5*F100")
	require.Equal(t, Terminal, got.Status)
	lines := strings.Split(got.Text, "\n")
	assert.Equal(t, []string{
		"Processes for F100:",
		"2025-03-09 maize irrigation: suitable 0.87",
		"2025-03-08 maize planting",
		"2025-03-07 beans harvest",
		"2025-03-06 beans harvest",
		"2025-03-05 beans harvest",
		"...and 2 more",
	}, lines)

	assert.Equal(t, "Could not load processes: missing or non-numeric: farmers_id", fx.run("5* ").Text)
}

func TestInterpret_DiagnoseRejoinsFreeText(t *testing.T) {
	fx := newFixture(t)
	got := fx.run("6*yellow  leaves*brown spots")
	assert.Equal(t, Response{Status: Terminal, Text: "Likely: Leaf rust. Remedies: yellow leaves brown spots."}, got)
}

func TestInterpret_FeedbackScenario(t *testing.T) {
	fx := newFixture(t)

	for i := 0; i < 2; i++ {
		got := fx.run("7*F100*Great app")
		assert.Equal(t, Response{Status: Terminal, Text: "Thank you for your feedback."}, got)
	}
	require.Len(t, fx.fb.entries, 2, "identical submissions are stored separately")
	for _, e := range fx.fb.entries {
		assert.Equal(t, feedbacksvc.Entry{FarmerID: "F100", Comment: "Great app", Channel: feedbacksvc.ChannelUSSD}, e)
	}

	fx.run("7*F100*very*useful")
	assert.Equal(t, "very useful", fx.fb.entries[2].Comment)
}

func TestInterpret_ExpertInfoIsImmediate(t *testing.T) {
	fx := newFixture(t)
	assert.Equal(t, Response{Status: Terminal, Text: ExpertInfo}, fx.run("8"))
	assert.Equal(t, Response{Status: Terminal, Text: ExpertInfo}, fx.run("8*anything"))
}

func TestInterpret_SuitabilityMapsStage(t *testing.T) {
	fx := newFixture(t)

	got := fx.run("9*Maize*irrigation*90*42*43*20.8*82*6.5*202.9")
	require.Equal(t, Terminal, got.Status)
	assert.Equal(t, []string{"vegetative"}, fx.proc.stages)
	assert.Equal(t, reading.Set{N: 90, P: 42, K: 43, Temperature: 20.8, Humidity: 82, PH: 6.5, Rainfall: 202.9}, fx.proc.sets[0])
	assert.Equal(t, "Maize at vegetative stage: suitable (score 0.87)\n"+
		"Check: N low, humidity high\n"+
		"No data: rainfall\n"+
		"Advice: Increase N", got.Text)

	fx.run("9*maize*1*90*42*43*20.8*82*6.5*202.9")
	assert.Equal(t, "preplant", fx.proc.stages[1], "menu number 1 is land_prep")

	fx.run("9*maize*mulching*90*42*43*20.8*82*6.5*202.9")
	assert.Equal(t, "vegetative", fx.proc.stages[2])
}

func TestInterpret_SuitabilityFailures(t *testing.T) {
	fx := newFixture(t)

	got := fx.run("9*maize*irrigation*90*x*43*20.8**6.5*202.9")
	assert.Equal(t, "Could not evaluate process: missing or non-numeric: P, humidity", got.Text)
	assert.Empty(t, fx.proc.stages, "the engine is not called")

	fx.proc.evalErr = &apperr.EngineError{Kind: apperr.ProcessFailed, Detail: "Traceback"}
	got = fx.run("9*maize*irrigation*90*42*43*20.8*82*6.5*202.9")
	assert.Equal(t, Response{Status: Terminal, Text: "Could not evaluate process: evaluation unavailable"}, got)
}

func TestInterpret_RecoversFromPanics(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	fx := newFixture(t)
	fx.s.log = zap.New(core)
	fx.s.Diagnoser = diagnoserFunc(func(context.Context, string) (*diagnosis.Result, error) {
		panic("nil map")
	})

	got := fx.run("6*wilting")
	assert.Equal(t, Response{Status: Terminal, Text: "Could not diagnose symptoms: service error, please try again later"}, got)
	require.Equal(t, 1, logs.FilterMessage("terminal action panicked").Len())
}

func TestInterpret_LogsFailures(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	fx := newFixture(t)
	fx.s.log = zap.New(core)

	fx.run("1*F100*nope")
	entries := logs.FilterMessage("terminal action failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "login", entries[0].ContextMap()["flow"])
	assert.Equal(t, "validation", entries[0].ContextMap()["kind"])
}

func TestInterpret_ConcurrentTrailsAreIndependent(t *testing.T) {
	fx := newFixture(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got := fx.run(fmt.Sprintf("7*F%d*note %d", i, i))
			assert.Equal(t, Terminal, got.Status)
		}(i)
	}
	wg.Wait()
	assert.Len(t, fx.fb.entries, 20)
}
