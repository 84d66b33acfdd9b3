package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lyricsheet/internal/setlist"
	"lyricsheet/internal/song"
)

const DefaultDBFile = "songs.sqlite3"

var ErrNotFound = errors.New("记录不存在")

type Store struct {
	DB *gorm.DB
	db *sql.DB
}

type songRecord struct {
	ID            string `gorm:"primaryKey;type:varchar(36)"`
	Position      int    `gorm:"index:idx_song_position"`
	Title         string `gorm:"index:idx_song_title"`
	Lyrics        string
	Chords        string
	Key           string `gorm:"column:song_key"`
	Tempo         int
	TimeSignature string
	Tags          []string  `gorm:"serializer:json"`
	Notes         string
	CreatedAt     time.Time `gorm:"autoCreateTime:false"`
	LastEditedAt  time.Time
	SchemaVersion int
}

func (songRecord) TableName() string { return "songs" }

type setlistRecord struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	Position  int       `gorm:"index:idx_setlist_position"`
	Name      string    `gorm:"index:idx_setlist_name"`
	SongIDs   []string  `gorm:"serializer:json"`
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

func (setlistRecord) TableName() string { return "setlists" }

func Open(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		dbPath = DefaultDBFile
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("创建数据库目录失败：%w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败（%s）：%w", dbPath, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取数据库连接失败：%w", err)
	}
	// a single writer keeps concurrent imports from hitting SQLITE_BUSY
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&songRecord{}, &setlistRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("初始化数据表失败：%w", err)
	}
	return &Store{DB: db, db: sqlDB}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) LoadSongs() ([]song.Song, error) {
	var recs []songRecord
	if err := s.DB.Order("position asc").Order("created_at asc").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("读取歌曲失败：%w", err)
	}
	out := make([]song.Song, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toSong())
	}
	return out, nil
}

// SaveSongs replaces the whole song table, keeping list order.
func (s *Store) SaveSongs(list []song.Song) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return replaceSongs(tx, list)
	})
}

// ReplaceAll swaps both tables in one transaction.
func (s *Store) ReplaceAll(songs []song.Song, sets []setlist.Setlist) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := replaceSongs(tx, songs); err != nil {
			return err
		}
		return replaceSetlists(tx, sets)
	})
}

func replaceSongs(tx *gorm.DB, list []song.Song) error {
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&songRecord{}).Error; err != nil {
		return fmt.Errorf("清空歌曲失败：%w", err)
	}
	if len(list) == 0 {
		return nil
	}
	recs := make([]songRecord, 0, len(list))
	for i, sg := range list {
		recs = append(recs, fromSong(sg, i))
	}
	if err := tx.CreateInBatches(recs, 100).Error; err != nil {
		return fmt.Errorf("写入歌曲失败：%w", err)
	}
	return nil
}

func (s *Store) GetSong(id string) (song.Song, error) {
	var rec songRecord
	err := s.DB.Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return song.Song{}, ErrNotFound
	}
	if err != nil {
		return song.Song{}, fmt.Errorf("读取歌曲失败：%w", err)
	}
	return rec.toSong(), nil
}

// FindSongs matches an id, a literal id prefix or a case-insensitive title.
func (s *Store) FindSongs(ref string) ([]song.Song, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrNotFound
	}
	var recs []songRecord
	err := s.DB.
		Where("id = ? OR substr(id, 1, ?) = ? OR LOWER(title) = ?", ref, utf8.RuneCountInString(ref), ref, strings.ToLower(ref)).
		Order("position asc").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("查询歌曲失败：%w", err)
	}
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	out := make([]song.Song, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toSong())
	}
	return out, nil
}

// PutSong inserts or updates one song. New songs go to the end of the list.
func (s *Store) PutSong(sg song.Song) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var existing songRecord
		err := tx.Select("id", "position").Where("id = ?", sg.ID).First(&existing).Error
		pos := existing.Position
		if errors.Is(err, gorm.ErrRecordNotFound) {
			var last sql.NullInt64
			if err := tx.Model(&songRecord{}).Select("MAX(position)").Scan(&last).Error; err != nil {
				return fmt.Errorf("读取歌曲顺序失败：%w", err)
			}
			pos = 0
			if last.Valid {
				pos = int(last.Int64) + 1
			}
		} else if err != nil {
			return fmt.Errorf("读取歌曲失败：%w", err)
		}
		rec := fromSong(sg, pos)
		if err := tx.Save(&rec).Error; err != nil {
			return fmt.Errorf("保存歌曲失败：%w", err)
		}
		return nil
	})
}

// DeleteSong removes a song and drops it from every setlist.
func (s *Store) DeleteSong(id string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&songRecord{})
		if res.Error != nil {
			return fmt.Errorf("删除歌曲失败：%w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		var sets []setlistRecord
		if err := tx.Find(&sets).Error; err != nil {
			return fmt.Errorf("读取歌单失败：%w", err)
		}
		for _, rec := range sets {
			sl := rec.toSetlist()
			if !sl.Remove(id) {
				continue
			}
			next := fromSetlist(sl, rec.Position)
			if err := tx.Save(&next).Error; err != nil {
				return fmt.Errorf("更新歌单失败：%w", err)
			}
		}
		return nil
	})
}

func (s *Store) LoadSetlists() ([]setlist.Setlist, error) {
	var recs []setlistRecord
	if err := s.DB.Order("position asc").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("读取歌单失败：%w", err)
	}
	out := make([]setlist.Setlist, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toSetlist())
	}
	return out, nil
}

func (s *Store) SaveSetlists(list []setlist.Setlist) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return replaceSetlists(tx, list)
	})
}

func replaceSetlists(tx *gorm.DB, list []setlist.Setlist) error {
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&setlistRecord{}).Error; err != nil {
		return fmt.Errorf("清空歌单失败：%w", err)
	}
	if len(list) == 0 {
		return nil
	}
	recs := make([]setlistRecord, 0, len(list))
	for i, sl := range list {
		recs = append(recs, fromSetlist(sl, i))
	}
	if err := tx.Create(&recs).Error; err != nil {
		return fmt.Errorf("写入歌单失败：%w", err)
	}
	return nil
}

// FindSetlist matches an id or a case-insensitive name.
func (s *Store) FindSetlist(ref string) (setlist.Setlist, error) {
	var rec setlistRecord
	err := s.DB.Where("id = ? OR LOWER(name) = ?", ref, strings.ToLower(strings.TrimSpace(ref))).
		Order("position asc").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return setlist.Setlist{}, ErrNotFound
	}
	if err != nil {
		return setlist.Setlist{}, fmt.Errorf("读取歌单失败：%w", err)
	}
	return rec.toSetlist(), nil
}

// PutSetlist inserts or updates one setlist. New setlists go to the end.
func (s *Store) PutSetlist(sl setlist.Setlist) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var existing setlistRecord
		err := tx.Select("id", "position").Where("id = ?", sl.ID).First(&existing).Error
		pos := existing.Position
		if errors.Is(err, gorm.ErrRecordNotFound) {
			var last sql.NullInt64
			if err := tx.Model(&setlistRecord{}).Select("MAX(position)").Scan(&last).Error; err != nil {
				return fmt.Errorf("读取歌单顺序失败：%w", err)
			}
			pos = 0
			if last.Valid {
				pos = int(last.Int64) + 1
			}
		} else if err != nil {
			return fmt.Errorf("读取歌单失败：%w", err)
		}
		rec := fromSetlist(sl, pos)
		if err := tx.Save(&rec).Error; err != nil {
			return fmt.Errorf("保存歌单失败：%w", err)
		}
		return nil
	})
}

func (s *Store) DeleteSetlist(id string) error {
	res := s.DB.Where("id = ?", id).Delete(&setlistRecord{})
	if res.Error != nil {
		return fmt.Errorf("删除歌单失败：%w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func fromSong(sg song.Song, pos int) songRecord {
	tags := sg.Tags
	if tags == nil {
		tags = []string{}
	}
	return songRecord{
		ID:            sg.ID,
		Position:      pos,
		Title:         sg.Title,
		Lyrics:        sg.Lyrics,
		Chords:        sg.Chords,
		Key:           sg.Key,
		Tempo:         sg.Tempo,
		TimeSignature: sg.TimeSignature,
		Tags:          tags,
		Notes:         sg.Notes,
		CreatedAt:     sg.CreatedAt,
		LastEditedAt:  sg.LastEditedAt,
		SchemaVersion: sg.SchemaVersion,
	}
}

func (r songRecord) toSong() song.Song {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return song.Song{
		ID:            r.ID,
		Title:         r.Title,
		Lyrics:        r.Lyrics,
		Chords:        r.Chords,
		Key:           r.Key,
		Tempo:         r.Tempo,
		TimeSignature: r.TimeSignature,
		Tags:          tags,
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt,
		LastEditedAt:  r.LastEditedAt,
		SchemaVersion: r.SchemaVersion,
	}
}

func fromSetlist(sl setlist.Setlist, pos int) setlistRecord {
	ids := sl.SongIDs
	if ids == nil {
		ids = []string{}
	}
	return setlistRecord{ID: sl.ID, Position: pos, Name: sl.Name, SongIDs: ids, CreatedAt: sl.CreatedAt, UpdatedAt: sl.UpdatedAt}
}

func (r setlistRecord) toSetlist() setlist.Setlist {
	ids := r.SongIDs
	if ids == nil {
		ids = []string{}
	}
	return setlist.Setlist{ID: r.ID, Name: r.Name, SongIDs: ids, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}
