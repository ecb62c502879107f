package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"mkulima/pkg/apperr"
	"mkulima/pkg/evaluation"
	farmersvc "mkulima/pkg/farmer/service"
	feedbacksvc "mkulima/pkg/feedback/service"
	procsvc "mkulima/pkg/process/service"
	"mkulima/pkg/reading"
	"mkulima/pkg/stage"
	"mkulima/pkg/weather"
)

// ExpertInfo is the static reply of the expert flow.
const ExpertInfo = "Agronomists are available Mon-Fri 8am-5pm at your nearest agricultural extension office. " +
	"Use option 6 to describe crop symptoms at any time."

// maxListed bounds the processes shown on one screen.
const maxListed = 5

func (s *Interpreter) login(ctx context.Context, f []string) (string, error) {
	if _, err := s.Identity.Login(ctx, f[0], f[1]); err != nil {
		return "", err
	}
	return "Login successful.", nil
}

func (s *Interpreter) register(ctx context.Context, f []string) (string, error) {
	farmer, err := s.Identity.Register(ctx, farmersvc.Registration{
		FarmerID:        f[0],
		FullName:        f[1],
		Contact:         f[2],
		LandSize:        f[3],
		SoilType:        f[4],
		Password:        f[5],
		ConfirmPassword: f[5], // one entry on a handset
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Registration successful. Welcome, %s.", farmer.FullName), nil
}

// blank marks a weather value left for the lookup.
func blank(tok string) bool { return tok == "" || tok == "-" }

func (s *Interpreter) weatherAdvice(ctx context.Context, f []string) (string, error) {
	city := f[0]
	raw := map[string]string{
		reading.Temperature: f[1],
		reading.Humidity:    f[2],
		reading.N:           f[3],
		reading.P:           f[4],
		reading.K:           f[5],
		reading.PH:          f[6],
		reading.Rainfall:    f[7],
	}
	entered := []string{reading.N, reading.P, reading.K}
	lookup := false
	for _, n := range []string{reading.Temperature, reading.Humidity} {
		if blank(raw[n]) {
			delete(raw, n)
			lookup = true
		} else {
			entered = append(entered, n)
		}
	}
	entered = append(entered, reading.PH, reading.Rainfall)
	vals, err := reading.Parse(raw, entered...)
	if err != nil {
		return "", err
	}

	var cond *weather.Conditions
	if lookup {
		if city == "" {
			return "", apperr.MissingFields("city")
		}
		if s.Weather == nil {
			return "", apperr.Upstream("weather", "", nil)
		}
		if cond, err = s.Weather.Current(ctx, city); err != nil {
			return "", err
		}
		if _, ok := vals[reading.Temperature]; !ok {
			vals[reading.Temperature] = cond.Temperature
		}
		if _, ok := vals[reading.Humidity]; !ok {
			vals[reading.Humidity] = cond.Humidity
		}
	}
	set, err := reading.ToSet(vals)
	if err != nil {
		return "", err
	}

	rec, err := s.Recommender.Recommend(ctx, set)
	if err != nil {
		return "", err
	}

	lines := []string{"Recommended crop: " + rec.Prediction}
	if rec.Confidence != nil {
		lines[0] += fmt.Sprintf(" (%.0f%%)", *rec.Confidence*100)
	}
	if len(rec.Alternatives) > 0 {
		lines = append(lines, "Also consider: "+strings.Join(rec.Alternatives, ", "))
	}
	if cond != nil {
		lines = append(lines, fmt.Sprintf("Weather in %s: %sC, %s%% humidity",
			cond.City, num(cond.Temperature), num(cond.Humidity)))
	}
	if s.Climate != nil {
		wind := 0.0
		if cond != nil {
			wind = cond.WindSpeed
		}
		if sug := s.Climate.Suggest(set.Temperature, set.Humidity, wind); sug.Rule != "" {
			lines = append(lines, "Suits this weather: "+strings.Join(sug.Crops, ", "))
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Interpreter) recordProcess(ctx context.Context, f []string) (string, error) {
	ev := procsvc.Event{FarmerID: f[0], Crop: f[1], ProcessType: processType(f[2])}
	if f[3] != "" {
		d, err := procsvc.ParseDate(f[3])
		if err != nil {
			return "", err
		}
		ev.Date = d
	}
	p, err := s.Processes.Record(ctx, ev)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Process recorded: %s %s on %s.", p.Crop, p.ProcessType, p.ProcessDate.Format(procsvc.DateLayout)), nil
}

func (s *Interpreter) viewProcesses(ctx context.Context, f []string) (string, error) {
	if f[0] == "" {
		return "", apperr.MissingFields("farmers_id")
	}
	list, err := s.Processes.List(ctx, f[0])
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "No processes recorded for " + f[0] + ".", nil
	}
	lines := []string{"Processes for " + f[0] + ":"}
	for i, p := range list {
		if i == maxListed {
			lines = append(lines, fmt.Sprintf("...and %d more", len(list)-maxListed))
			break
		}
		line := fmt.Sprintf("%s %s %s", p.ProcessDate.Format(procsvc.DateLayout), p.Crop, p.ProcessType)
		if p.Suitable != nil && p.SuitabilityScore != nil {
			verdict := evaluation.NotSuitable
			if *p.Suitable {
				verdict = evaluation.Suitable
			}
			line += fmt.Sprintf(": %s %.2f", verdict, *p.SuitabilityScore)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Interpreter) diagnose(ctx context.Context, f []string) (string, error) {
	res, err := s.Diagnoser.Diagnose(ctx, f[0])
	if err != nil {
		return "", err
	}
	return res.Text(), nil
}

func (s *Interpreter) feedback(ctx context.Context, f []string) (string, error) {
	if _, err := s.Feedback.Submit(ctx, feedbacksvc.Entry{
		FarmerID: f[0],
		Comment:  f[1],
		Channel:  feedbacksvc.ChannelUSSD,
	}); err != nil {
		return "", err
	}
	return "Thank you for your feedback.", nil
}

func (s *Interpreter) expertInfo(context.Context, []string) (string, error) {
	return ExpertInfo, nil
}

func (s *Interpreter) suitability(ctx context.Context, f []string) (string, error) {
	crop, ptype := f[0], processType(f[1])
	raw := make(map[string]string, len(reading.Names))
	for i, n := range reading.Names {
		raw[n] = f[2+i]
	}
	// readings first so a bad entry never reaches the engine
	vals, err := reading.Parse(raw)
	if err != nil {
		return "", err
	}
	set, err := reading.ToSet(vals)
	if err != nil {
		return "", err
	}
	if crop == "" {
		return "", apperr.MissingFields("crop")
	}

	res, err := s.Processes.Evaluate(ctx, crop, stage.Map(ptype), set)
	if err != nil {
		return "", err
	}
	return renderResult(res), nil
}

func renderResult(res *evaluation.Result) string {
	lines := []string{fmt.Sprintf("%s at %s stage: %s (score %.2f)", res.Crop, res.Stage, res.Prediction(), res.Score)}
	var missing []string
	for _, n := range reading.Names {
		if res.Flag(n) == evaluation.NoData {
			missing = append(missing, n)
		}
	}
	off := res.OffRange()
	if len(off) > 0 {
		lines = append(lines, "Check: "+strings.Join(off, ", "))
	}
	if len(missing) > 0 {
		lines = append(lines, "No data: "+strings.Join(missing, ", "))
	}
	if len(off) == 0 && len(missing) == 0 {
		lines = append(lines, "Readings in range.")
	}
	if res.Advice != "" {
		lines = append(lines, "Advice: "+res.Advice)
	}
	return strings.Join(lines, "\n")
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }
