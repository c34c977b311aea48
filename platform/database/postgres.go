package database

import (
	"context"

	"github.com/DedS3t/richup-server/app/models"
	"github.com/go-pg/pg/v10"
	"github.com/go-pg/pg/v10/orm"
)

type Options struct {
	Addr     string
	User     string
	Password string
	Database string
}

func PostgreSQLConnection(opts Options) *pg.DB {
	return pg.Connect(&pg.Options{
		User:     opts.User,
		Addr:     opts.Addr,
		Password: opts.Password,
		Database: opts.Database,
	})
}

// Archive stores one row per finished game.
type Archive struct {
	db *pg.DB
}

// NewArchive checks the connection and creates the results table if needed.
func NewArchive(ctx context.Context, db *pg.DB) (*Archive, error) {
	if err := db.Ping(ctx); err != nil {
		return nil, err
	}
	err := db.ModelContext(ctx, (*models.GameResult)(nil)).CreateTable(&orm.CreateTableOptions{
		IfNotExists: true,
	})
	if err != nil {
		return nil, err
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Record(ctx context.Context, result models.GameResult) error {
	_, err := a.db.ModelContext(ctx, &result).OnConflict("(id) DO NOTHING").Insert()
	return err
}

// Recent returns the latest finished games, newest first.
func (a *Archive) Recent(ctx context.Context, limit int) ([]models.GameResult, error) {
	var results []models.GameResult
	err := a.db.ModelContext(ctx, &results).Order("ended_at DESC").Limit(limit).Select()
	return results, err
}
