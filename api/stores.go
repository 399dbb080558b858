package main

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	social "github.com/jimiolaniyan/gosocial"
	"github.com/jimiolaniyan/gosocial/auth"
	"github.com/jimiolaniyan/gosocial/config"
	"github.com/jimiolaniyan/gosocial/storage"
)

type repositories struct {
	accounts auth.Repository
	messages social.Repository
	close    func() error
}

func noopClose() error { return nil }

// openRepositories connects the account and message stores selected by
// cfg.StoreDriver. The returned close func releases the connection.
func openRepositories(ctx context.Context, cfg config.Config) (*repositories, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	switch cfg.StoreDriver {
	case config.DriverMemory:
		return &repositories{
			accounts: auth.NewAccountRepository(),
			messages: social.NewMessageRepository(),
			close:    noopClose,
		}, nil

	case config.DriverMySQL, config.DriverPostgres:
		db, err := storage.OpenSQL(ctx, cfg.StoreDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		if err := storage.Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &repositories{
			accounts: auth.NewSQLAccountRepository(db),
			messages: social.NewSQLMessageRepository(db),
			close:    db.Close,
		}, nil

	case config.DriverMongo:
		db, err := storage.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return &repositories{
			accounts: auth.NewMongoAccountRepository(db),
			messages: social.NewMongoMessageRepository(db),
			close: func() error {
				return db.Client().Disconnect(context.Background())
			},
		}, nil

	case config.DriverBadger:
		return openBadgerRepositories(cfg.BadgerPath)
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func openBadgerRepositories(dir string) (*repositories, error) {
	db, err := storage.OpenBadger(dir)
	if err != nil {
		return nil, err
	}

	accountSeq, err := storage.BadgerSequence(db, "account")
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	messageSeq, err := storage.BadgerSequence(db, "message")
	if err != nil {
		_ = accountSeq.Release()
		_ = db.Close()
		return nil, err
	}

	return &repositories{
		accounts: auth.NewBadgerAccountRepository(db, accountSeq),
		messages: social.NewBadgerMessageRepository(db, messageSeq),
		close: func() error {
			for _, seq := range []interface{ Release() error }{accountSeq, messageSeq} {
				if err := seq.Release(); err != nil {
					log.WithError(err).Warn("failed to release badger sequence")
				}
			}
			return db.Close()
		},
	}, nil
}
