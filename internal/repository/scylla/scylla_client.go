package scylla

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gocql/gocql"

	"tryout-service/internal/config"
	"tryout-service/internal/util"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// PreparedStatements holds the statements the repositories execute on every
// request. Lightweight one-off queries go through Session.Query directly.
type PreparedStatements struct {
	CreateParticipant    *gocql.Query
	GetParticipant       *gocql.Query
	GetParticipantByMail *gocql.Query
	UpdatePasswordHash   *gocql.Query

	CreateProofByID          *gocql.Query
	CreateProofByParticipant *gocql.Query
	GetProofByID             *gocql.Query
	LatestProofByParticipant *gocql.Query
}

type ScyllaClient struct {
	Session      *gocql.Session
	config       *config.ScyllaConfig
	Prepared     *PreparedStatements
	prepareMutex sync.Mutex
	isPrepared   bool
}

func NewScyllaClient(cfg *config.Config) (*ScyllaClient, error) {
	scyllaConfig := cfg.Scylla

	cluster := gocql.NewCluster(scyllaConfig.Nodes...)
	cluster.Keyspace = scyllaConfig.Keyspace
	cluster.Consistency = gocql.LocalQuorum
	cluster.Timeout = 10 * time.Second
	cluster.ConnectTimeout = 10 * time.Second
	cluster.NumConns = 2
	cluster.SocketKeepalive = 30 * time.Second
	cluster.RetryPolicy = &gocql.ExponentialBackoffRetryPolicy{
		Min:        time.Second,
		Max:        10 * time.Second,
		NumRetries: 3,
	}

	if scyllaConfig.Username != "" && scyllaConfig.Password != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: scyllaConfig.Username,
			Password: scyllaConfig.Password,
		}
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create scylla session: %w", err)
	}

	client := &ScyllaClient{
		Session: session,
		config:  &scyllaConfig,
	}

	if err := client.prepareStatements(); err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	util.Info("ScyllaDB client initialized",
		util.Any("nodes", scyllaConfig.Nodes),
		util.String("keyspace", scyllaConfig.Keyspace))

	return client, nil
}

func (s *ScyllaClient) prepareStatements() error {
	s.prepareMutex.Lock()
	defer s.prepareMutex.Unlock()

	if s.isPrepared {
		return nil
	}

	prepared := &PreparedStatements{}

	prepared.CreateParticipant = s.Session.Query(`
        INSERT INTO participants (
            bucket, id, nama, nisn, tanggal_lahir, asal_sekolah, whatsapp,
            email, password_hash, registered_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	prepared.GetParticipant = s.Session.Query(`
        SELECT bucket, id, nama, nisn, tanggal_lahir, asal_sekolah, whatsapp,
            email, password_hash, registered_at, updated_at
        FROM participants WHERE bucket = ? AND id = ?`)

	prepared.GetParticipantByMail = s.Session.Query(`
        SELECT bucket, participant_id FROM email_to_participant WHERE email = ?`)

	prepared.UpdatePasswordHash = s.Session.Query(`
        UPDATE participants SET password_hash = ?, updated_at = ?
        WHERE bucket = ? AND id = ?`)

	prepared.CreateProofByID = s.Session.Query(`
        INSERT INTO payment_proofs_by_id (
            id, participant_id, file_path, amount, status, admin_notes,
            created_at, verified_at, verified_by
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	prepared.CreateProofByParticipant = s.Session.Query(`
        INSERT INTO payment_proofs_by_participant (
            participant_id, created_at, id, file_path, amount, status,
            admin_notes, verified_at, verified_by
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	prepared.GetProofByID = s.Session.Query(`
        SELECT id, participant_id, file_path, amount, status, admin_notes,
            created_at, verified_at, verified_by
        FROM payment_proofs_by_id WHERE id = ?`)

	prepared.LatestProofByParticipant = s.Session.Query(`
        SELECT id, participant_id, file_path, amount, status, admin_notes,
            created_at, verified_at, verified_by
        FROM payment_proofs_by_participant WHERE participant_id = ? LIMIT 1`)

	s.Prepared = prepared
	s.isPrepared = true

	util.Info("ScyllaDB prepared statements created")
	return nil
}

func (s *ScyllaClient) Close() {
	if s.Session != nil {
		s.Session.Close()
		util.Info("ScyllaDB client closed")
	}
}

func (s *ScyllaClient) Query(stmt string, values ...interface{}) *gocql.Query {
	return s.Session.Query(stmt, values...)
}

func (s *ScyllaClient) Batch(typ gocql.BatchType) *gocql.Batch {
	return s.Session.NewBatch(typ)
}

func (s *ScyllaClient) ExecuteBatch(batch *gocql.Batch) error {
	return s.Session.ExecuteBatch(batch)
}

func (s *ScyllaClient) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var clusterName string
	err := s.Session.Query(`SELECT cluster_name FROM system.local`).WithContext(ctx).Scan(&clusterName)
	if err != nil {
		return fmt.Errorf("scylla health check failed: %w", err)
	}

	util.Debug("ScyllaDB health check passed", util.String("cluster_name", clusterName))
	return nil
}

// ScanWithRetry retries transient read failures with a short linear backoff.
func (s *ScyllaClient) ScanWithRetry(query *gocql.Query, dest ...interface{}) error {
	var lastErr error
	for i := 0; i < 3; i++ {
		if err := query.Scan(dest...); err != nil {
			if err == gocql.ErrNotFound {
				return err
			}
			lastErr = err
			if i < 2 {
				time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
				continue
			}
		} else {
			return nil
		}
	}
	return lastErr
}
