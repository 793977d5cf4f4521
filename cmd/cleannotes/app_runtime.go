package main

import (
	"fmt"

	"github.com/rifat0153/cleannotes/internal/config"
	"github.com/rifat0153/cleannotes/internal/database"
	"github.com/rifat0153/cleannotes/internal/logging"
	"github.com/rifat0153/cleannotes/internal/notes"
	"github.com/rifat0153/cleannotes/internal/notes/memory"
	"go.uber.org/zap"
)

// appRuntime is the configured logger and note storage behind a command.
type appRuntime struct {
	config     config.AppConfig
	logger     *zap.Logger
	repository notes.Repository
	closers    []func() error
}

func (app *cli) openRuntime() (*appRuntime, error) {
	appConfig, err := config.Load(app.viper)
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel, appConfig.LogFormat)
	if err != nil {
		return nil, err
	}

	rt := &appRuntime{config: appConfig, logger: logger}
	switch appConfig.StorageDriver {
	case config.StorageMemory:
		rt.repository = memory.NewRepository()
	case config.StorageSQLite:
		db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, sqlDB.Close)
		repository, err := notes.NewGormRepository(db)
		if err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		rt.repository = repository
	default:
		return nil, fmt.Errorf("storage.driver %q is not supported", appConfig.StorageDriver)
	}
	return rt, nil
}

func (rt *appRuntime) useCases() (notes.UseCases, error) {
	return notes.NewUseCases(notes.UseCasesConfig{Repository: rt.repository, Logger: rt.logger})
}

func (rt *appRuntime) Close() {
	for _, closeFn := range rt.closers {
		if err := closeFn(); err != nil {
			rt.logger.Warn("failed to release resource", zap.Error(err))
		}
	}
	_ = rt.logger.Sync()
}
