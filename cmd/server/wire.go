package main

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"mkulima/config"
	"mkulima/database"
	"mkulima/router"

	adviceCtrlImp "mkulima/pkg/advice/controllerImp"
	"mkulima/pkg/ai"
	"mkulima/pkg/climate"
	"mkulima/pkg/diagnosis"
	"mkulima/pkg/evaluation"
	"mkulima/pkg/session"
	"mkulima/pkg/weather"

	farmerCtrlImp "mkulima/pkg/farmer/controllerImp"
	farmerRepoImp "mkulima/pkg/farmer/repositoryImp"
	farmerSvcImp "mkulima/pkg/farmer/serviceImp"

	feedbackCtrlImp "mkulima/pkg/feedback/controllerImp"
	feedbackRepoImp "mkulima/pkg/feedback/repositoryImp"
	feedbackSvcImp "mkulima/pkg/feedback/serviceImp"

	processCtrlImp "mkulima/pkg/process/controllerImp"
	processRepoImp "mkulima/pkg/process/repositoryImp"
	processSvcImp "mkulima/pkg/process/serviceImp"

	kbCtrlImp "mkulima/pkg/kb/controllerImp"
	kbEmbedder "mkulima/pkg/kb/embedder"
	kbRepoImp "mkulima/pkg/kb/repositoryImp"
	kbSvcImp "mkulima/pkg/kb/serviceImp"

	healthCtrlImp "mkulima/pkg/health/controllerImp"
	ussdCtrlImp "mkulima/pkg/ussd/controllerImp"
)

// app is the wired service.
type app struct {
	db          *gorm.DB
	registry    *prometheus.Registry
	interpreter *session.Interpreter
	controllers router.Controllers
}

func build(cfg config.AppConfig, log *zap.Logger) (*app, error) {
	db, err := database.Open(cfg.DBDialect, cfg.DSN())
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// engine: subprocess, bounded by the gate, observed outside the gate so
	// queue wait shows up in the latency histogram
	// scripts resolve against ML_DIR, the subprocess working dir
	python := evaluation.NewPythonEngine(cfg.MLPython, cfg.MLDir, cfg.MLEvalScript, cfg.MLRecommendScript)
	gate := evaluation.NewGate(cfg.MLMaxConcurrency, cfg.MLTimeout)
	obs := evaluation.NewObserver(log.Named("engine"), reg)
	engine := obs.Engine(gate.Engine(python))
	recommender := obs.Recommender(gate.Recommender(python))

	rules, err := climate.LoadFromFile(cfg.CropRulesPath)
	if err != nil {
		return nil, err
	}

	var llm ai.Client
	if cfg.AIEndpoint != "" && cfg.AIAPIKey != "" {
		llm = ai.NewOpenAI(cfg.AIEndpoint, cfg.AIAPIKey, cfg.AIModel)
	} else {
		log.Info("AI endpoint not configured, using keyword mock")
		llm = ai.NewMock()
	}
	wx := weather.New(cfg.WeatherEndpoint, cfg.WeatherAPIKey)

	var emb kbSvcImp.Embedder
	if cfg.EmbEndpoint != "" {
		emb = kbEmbedder.New(cfg.EmbEndpoint, cfg.EmbAPIKey, cfg.EmbModel)
	}
	kbSvc := kbSvcImp.New(kbRepoImp.New(db), emb, strings.Split(cfg.KBAllowedDomains, ","), log.Named("kb"))
	diag := diagnosis.New(kbSvc, llm, log.Named("diagnosis"))

	farmers := farmerSvcImp.NewFarmerService(farmerRepoImp.New(db), bcrypt.DefaultCost, log.Named("farmer"))
	processes := processSvcImp.NewProcessService(processRepoImp.New(db), engine, log.Named("process"))
	feedback := feedbackSvcImp.NewFeedbackService(feedbackRepoImp.New(db))

	interp := session.New(session.Deps{
		Identity:    farmers,
		Processes:   processes,
		Recommender: recommender,
		Weather:     wx,
		Climate:     rules,
		Diagnoser:   diag,
		Feedback:    feedback,
	}, log.Named("session"))

	return &app{
		db:          db,
		registry:    reg,
		interpreter: interp,
		controllers: router.Controllers{
			Farmer:   farmerCtrlImp.New(farmers),
			Process:  processCtrlImp.New(processes, recommender),
			Feedback: feedbackCtrlImp.New(feedback),
			Advice:   adviceCtrlImp.New(wx, rules, llm, diag),
			KB:       kbCtrlImp.New(kbSvc),
			USSD:     ussdCtrlImp.New(interp, log.Named("ussd")),
			Health: healthCtrlImp.NewHealthCtrl(db, healthCtrlImp.Engine{
				Python:  cfg.MLPython,
				Dir:     cfg.MLDir,
				Scripts: []string{cfg.MLEvalScript, cfg.MLRecommendScript},
			}),
		},
	}, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
