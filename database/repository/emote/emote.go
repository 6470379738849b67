package emote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/emoji-connoisseur/connoisseur/common"
	"github.com/emoji-connoisseur/connoisseur/common/cache"
	"github.com/emoji-connoisseur/connoisseur/database"
	"github.com/emoji-connoisseur/connoisseur/log"
)

const columns = "id, name, author_id, animated, description, created_at, modified_at, preserve"

var (
	cacheMu sync.RWMutex
	// storeMu orders database writes and their cache updates against the
	// load-and-memoise path of One
	storeMu sync.RWMutex
)

func getCache() *cache.LRUCache {
	cacheMu.RLock()
	defer cacheMu.RUnlock()
	return emoteCache
}

func cacheKey(name string) string {
	return strings.ToLower(name)
}

// SetCacheSize replaces the emote cache with an empty one holding at most
// capacity emotes
func SetCacheSize(capacity uint64) error {
	c, err := cache.New(capacity)
	if err != nil {
		return err
	}
	cacheMu.Lock()
	emoteCache = c
	cacheMu.Unlock()
	log.Debugf(log.CacheMgr, "Emote cache resized to %d entries", capacity)
	return nil
}

// CacheLen returns the amount of emotes currently memoised
func CacheLen() uint64 {
	return getCache().Len()
}

// One returns an emote by its case insensitive name. Hits are served from the
// cache, misses are loaded from the database and memoised
func One(ctx context.Context, name string) (Details, error) {
	if name == "" {
		return Details{}, errEmptyName
	}
	c := getCache()
	key := cacheKey(name)
	if v, err := c.Get(key); err == nil {
		if d, ok := v.(Details); ok {
			return d, nil
		}
	}

	storeMu.RLock()
	defer storeMu.RUnlock()
	db, err := database.DB.GetSQL()
	if err != nil {
		return Details{}, fmt.Errorf("%w: %w", database.ErrDatabaseSupportDisabled, err)
	}

	query := "SELECT " + columns + " FROM emote WHERE LOWER(name) = LOWER($1)"
	database.DB.LogQuery(query, name)
	d, err := scanDetails(db.QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return Details{}, fmt.Errorf("%w: %s", ErrNoEmoteFound, name)
	}
	if err != nil {
		return Details{}, err
	}
	c.Add(key, d)
	return d, nil
}

// Insert stores a new emote and memoises it
func Insert(ctx context.Context, in Details) error {
	if in.Name == "" {
		return errEmptyName
	}
	if !common.IsSnowflake(in.ID) {
		return fmt.Errorf("%w: %d", errInvalidID, in.ID)
	}
	if in.Created.IsZero() {
		in.Created = time.Now()
	}
	in.Created = in.Created.UTC()

	storeMu.Lock()
	defer storeMu.Unlock()
	db, err := database.DB.GetSQL()
	if err != nil {
		return fmt.Errorf("%w: %w", database.ErrDatabaseSupportDisabled, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	query := "INSERT INTO emote (" + columns + ") VALUES ($1, $2, $3, $4, $5, $6, $7, $8)"
	database.DB.LogQuery(query, in.ID, in.Name)
	_, err = tx.ExecContext(ctx, query,
		int64(in.ID), //nolint:gosec // snowflakes are 63 bit
		in.Name,
		int64(in.AuthorID), //nolint:gosec // snowflakes are 63 bit
		in.Animated,
		nullString(in.Description),
		in.Created,
		nullTime(in.Modified),
		in.Preserve)
	if err != nil {
		log.Errorf(log.DatabaseMgr, "Emote insert failed: %v", err)
		if errRB := tx.Rollback(); errRB != nil {
			log.Errorf(log.DatabaseMgr, "Insert transaction rollback failed: %v", errRB)
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		log.Errorf(log.DatabaseMgr, "Insert transaction commit failed: %v", err)
		return err
	}

	getCache().Add(cacheKey(in.Name), in)
	return nil
}

// Delete removes an emote and evicts it from the cache
func Delete(ctx context.Context, name string) error {
	if name == "" {
		return errEmptyName
	}
	storeMu.Lock()
	defer storeMu.Unlock()
	db, err := database.DB.GetSQL()
	if err != nil {
		return fmt.Errorf("%w: %w", database.ErrDatabaseSupportDisabled, err)
	}

	query := "DELETE FROM emote WHERE LOWER(name) = LOWER($1)"
	database.DB.LogQuery(query, name)
	res, err := db.ExecContext(ctx, query, name)
	if err != nil {
		return err
	}
	getCache().Remove(cacheKey(name))
	return checkAffected(res, name)
}

// SetDescription updates the description of an emote and returns the
// refreshed record
func SetDescription(ctx context.Context, name, description string) (Details, error) {
	if name == "" {
		return Details{}, errEmptyName
	}
	if err := updateDescription(ctx, name, description); err != nil {
		return Details{}, err
	}
	return One(ctx, name)
}

func updateDescription(ctx context.Context, name, description string) error {
	storeMu.Lock()
	defer storeMu.Unlock()
	db, err := database.DB.GetSQL()
	if err != nil {
		return fmt.Errorf("%w: %w", database.ErrDatabaseSupportDisabled, err)
	}

	query := "UPDATE emote SET description = $1, modified_at = $2 WHERE LOWER(name) = LOWER($3)"
	database.DB.LogQuery(query, description, name)
	res, err := db.ExecContext(ctx, query, nullString(description), time.Now().UTC(), name)
	if err != nil {
		return err
	}
	getCache().Remove(cacheKey(name))
	return checkAffected(res, name)
}

// All returns every emote ordered by name
func All(ctx context.Context) ([]Details, error) {
	db, err := database.DB.GetSQL()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", database.ErrDatabaseSupportDisabled, err)
	}

	query := "SELECT " + columns + " FROM emote ORDER BY LOWER(name)"
	database.DB.LogQuery(query)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resp []Details
	for rows.Next() {
		d, err := scanDetails(rows)
		if err != nil {
			return nil, err
		}
		resp = append(resp, d)
	}
	return resp, rows.Err()
}

// Count returns the amount of stored emotes
func Count(ctx context.Context) (int64, error) {
	db, err := database.DB.GetSQL()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", database.ErrDatabaseSupportDisabled, err)
	}
	var n int64
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM emote").Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDetails(row scanner) (Details, error) {
	var (
		d                 Details
		id, author        int64
		description       sql.NullString
		created, modified sql.NullTime
	)
	if err := row.Scan(&id, &d.Name, &author, &d.Animated, &description, &created, &modified, &d.Preserve); err != nil {
		return Details{}, err
	}
	d.ID = uint64(id)           //nolint:gosec // stored from a uint64
	d.AuthorID = uint64(author) //nolint:gosec // stored from a uint64
	d.Description = description.String
	d.Created = created.Time.UTC()
	if modified.Valid {
		d.Modified = modified.Time.UTC()
	}
	return d, nil
}

func checkAffected(res sql.Result, name string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNoEmoteFound, name)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
