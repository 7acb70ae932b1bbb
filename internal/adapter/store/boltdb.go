package store

import (
	"encoding/json"
	"fmt"
	"time"

	"crashsig/internal/domain"
	"go.etcd.io/bbolt"
)

var (
	bucketSignatures = []byte("signatures")
	bucketRaw        = []byte("raw")
	bucketStats      = []byte("stats")
	keyStats         = []byte("library_stats")
)

// BoltStore keeps the signature library index in a single bbolt file.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketSignatures, bucketRaw, bucketStats} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

type signatureMeta struct {
	Path             string `json:"path"`
	ModTime          int64  `json:"mod_time"`
	SymptomCount     int    `json:"symptom_count"`
	RequiresTestcase bool   `json:"requires_testcase"`
}

func (s *BoltStore) PutSignature(sig domain.SignatureFile) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		meta := signatureMeta{
			Path:             sig.Path,
			ModTime:          sig.ModTime.UnixNano(),
			SymptomCount:     sig.SymptomCount,
			RequiresTestcase: sig.RequiresTestcase,
		}
		data, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketSignatures).Put([]byte(sig.ID), data); err != nil {
			return err
		}
		return tx.Bucket(bucketRaw).Put([]byte(sig.ID), []byte(sig.Raw))
	})
}

func (s *BoltStore) GetSignature(id string) (domain.SignatureFile, error) {
	var sig domain.SignatureFile
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSignatures).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("signature not found: %s", id)
		}
		var err error
		sig, err = decodeSignature(id, data, tx.Bucket(bucketRaw).Get([]byte(id)))
		return err
	})
	return sig, err
}

func (s *BoltStore) DeleteSignature(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketSignatures).Delete([]byte(id)); err != nil {
			return err
		}
		return tx.Bucket(bucketRaw).Delete([]byte(id))
	})
}

// ListSignatures returns all signatures ordered by ID.
func (s *BoltStore) ListSignatures() ([]domain.SignatureFile, error) {
	var sigs []domain.SignatureFile
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketRaw)
		return tx.Bucket(bucketSignatures).ForEach(func(k, v []byte) error {
			sig, err := decodeSignature(string(k), v, raw.Get(k))
			if err != nil {
				return err
			}
			sigs = append(sigs, sig)
			return nil
		})
	})
	return sigs, err
}

func decodeSignature(id string, metaData, raw []byte) (domain.SignatureFile, error) {
	var meta signatureMeta
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return domain.SignatureFile{}, err
	}
	return domain.SignatureFile{
		ID:               id,
		Path:             meta.Path,
		ModTime:          time.Unix(0, meta.ModTime),
		Raw:              string(raw),
		SymptomCount:     meta.SymptomCount,
		RequiresTestcase: meta.RequiresTestcase,
	}, nil
}

func (s *BoltStore) GetStats() (domain.LibraryStats, error) {
	var stats domain.LibraryStats
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketStats).Get(keyStats)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &stats)
	})
	return stats, err
}

func (s *BoltStore) UpdateStats(stats domain.LibraryStats) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketStats).Put(keyStats, data)
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
