package session

import (
	"context"
	"strconv"
	"strings"

	"mkulima/pkg/stage"
)

type action func(s *Interpreter, ctx context.Context, fields []string) (string, error)

// flow is one linear wizard: a menu key, its prompts in answer order and the
// action run once every prompt is answered.
type flow struct {
	key      string
	title    string // menu label
	name     string // for logs
	prompts  []string
	freeText bool   // the last field swallows the remaining tokens
	failure  string // prefix of the failure message
	run      action
}

const (
	promptFarmerID = "Enter Farmer ID:"
	promptPassword = "Enter Password:"
	promptCrop     = "Enter Crop:"
)

var readingPrompts = []string{
	"Enter Nitrogen (N):",
	"Enter Phosphorus (P):",
	"Enter Potassium (K):",
	"Enter Temperature (C):",
	"Enter Humidity (%):",
	"Enter Soil pH:",
	"Enter Rainfall (mm):",
}

var flows = []*flow{
	{
		key: "1", title: "Login", name: "login",
		prompts: []string{promptFarmerID, promptPassword},
		failure: "Login failed",
		run:     (*Interpreter).login,
	},
	{
		key: "2", title: "Register", name: "register",
		prompts: []string{
			promptFarmerID,
			"Enter Full Name:",
			"Enter Contact:",
			"Enter Land Size (acres):",
			"Enter Soil Type:",
			promptPassword,
		},
		failure: "Registration failed",
		run:     (*Interpreter).register,
	},
	{
		key: "3", title: "Weather crop advice", name: "weather_advice",
		prompts: []string{
			"Enter City:",
			"Enter Temperature (C) or - for current weather:",
			"Enter Humidity (%) or - for current weather:",
			readingPrompts[0], readingPrompts[1], readingPrompts[2],
			readingPrompts[5], readingPrompts[6],
		},
		failure: "Could not get crop advice",
		run:     (*Interpreter).weatherAdvice,
	},
	{
		key: "4", title: "Record process", name: "record_process",
		prompts: []string{promptFarmerID, promptCrop, processTypePrompt(), "Enter Date (YYYY-MM-DD):"},
		failure: "Could not record process",
		run:     (*Interpreter).recordProcess,
	},
	{
		key: "5", title: "My processes", name: "view_processes",
		prompts: []string{promptFarmerID},
		failure: "Could not load processes",
		run:     (*Interpreter).viewProcesses,
	},
	{
		key: "6", title: "Diagnose crop", name: "diagnose",
		prompts:  []string{"Describe the symptoms:"},
		freeText: true,
		failure:  "Could not diagnose symptoms",
		run:      (*Interpreter).diagnose,
	},
	{
		key: "7", title: "Feedback", name: "feedback",
		prompts:  []string{promptFarmerID, "Enter your feedback:"},
		freeText: true,
		failure:  "Could not save feedback",
		run:      (*Interpreter).feedback,
	},
	{
		key: "8", title: "Talk to an expert", name: "expert_info",
		run: (*Interpreter).expertInfo,
	},
	{
		key: "9", title: "Suitability check", name: "suitability",
		prompts: append([]string{promptCrop, processTypePrompt()}, readingPrompts...),
		failure: "Could not evaluate process",
		run:     (*Interpreter).suitability,
	},
}

var byKey = func() map[string]*flow {
	m := make(map[string]*flow, len(flows))
	for _, f := range flows {
		m[f.key] = f
	}
	return m
}()

var menu = func() string {
	var b strings.Builder
	b.WriteString("Welcome to Mkulima")
	for _, f := range flows {
		b.WriteString("\n" + f.key + ". " + f.title)
	}
	return b.String()
}()

func processTypePrompt() string {
	var b strings.Builder
	b.WriteString("Enter Process Type:")
	for i, t := range stage.ProcessTypes() {
		b.WriteString("\n" + strconv.Itoa(i+1) + ". " + t)
	}
	return b.String()
}

// processType accepts a menu number or the type itself.
func processType(tok string) string {
	types := stage.ProcessTypes()
	if i, err := strconv.Atoi(tok); err == nil && i >= 1 && i <= len(types) {
		return types[i-1]
	}
	return strings.ToLower(tok)
}
