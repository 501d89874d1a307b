package main

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/hoisie/redis"
	_ "github.com/lib/pq"
	"github.com/oarkflow/json"
	"github.com/oarkflow/xid"
)

const AUDIT_LOG_OUTPUT_BUFFER = 1024

type AuditLogger interface {
	Run()
	Write(mesg *AuditMesg)
	// Close stores pending messages and stops the logger.
	Close()
}

type AuditMesg struct {
	RunID     string    `json:"run"`
	Query     string    `json:"query"`
	Result    string    `json:"result"`
	Timestamp time.Time `json:"timestamp"`
}

// runID tags every audit message written by this process.
var runID = xid.New().String()

func NewAuditMessage(query string, result string) *AuditMesg {
	return &AuditMesg{
		RunID:     runID,
		Query:     query,
		Result:    result,
		Timestamp: time.Now(),
	}
}

func NewAuditLogger(as AuditSettings, rs RedisSettings, ps PostgresqlSettings) (AuditLogger, error) {
	switch as.Backend {
	case "":
		return nil, nil
	case "redis":
		return NewRedisAuditLogger(rs, as.Expire), nil
	case "postgresql":
		return NewPostgresqlAuditLogger(ps, as.Expire)
	}
	return nil, fmt.Errorf("invalid audit backend %q", as.Backend)
}

type RedisAuditLogger struct {
	backend *redis.Client
	mesgs   chan *AuditMesg
	done    chan struct{}
	expire  int64
}

func NewRedisAuditLogger(rs RedisSettings, expire int64) AuditLogger {
	rc := &redis.Client{Addr: rs.Addr(), Db: rs.DB, Password: rs.Password}
	auditLogger := &RedisAuditLogger{
		backend: rc,
		mesgs:   make(chan *AuditMesg, AUDIT_LOG_OUTPUT_BUFFER),
		done:    make(chan struct{}),
		expire:  expire,
	}
	go auditLogger.Run()
	return auditLogger
}

func (rl *RedisAuditLogger) Run() {
	defer close(rl.done)
	for mesg := range rl.mesgs {
		jsonMesg, err := json.Marshal(mesg)
		if err != nil {
			logger.Error("Can't write to redis audit log: %v", err)
			continue
		}
		redisKey := fmt.Sprintf("audit-%s:00", mesg.Timestamp.Format("2006-01-02T15"))
		err = rl.backend.Rpush(redisKey, jsonMesg)
		if err != nil {
			logger.Error("Can't write to redis audit log: %v", err)
			continue
		}
		_, err = rl.backend.Expire(redisKey, rl.expire)
		if err != nil {
			logger.Error("Can't set expiration for redis audit log: %v", err)
			continue
		}
	}
}

func (rl *RedisAuditLogger) Write(mesg *AuditMesg) {
	rl.mesgs <- mesg
}

func (rl *RedisAuditLogger) Close() {
	close(rl.mesgs)
	<-rl.done
}

type PostgresqlAuditLogger struct {
	backend *sql.DB
	mesgs   chan *AuditMesg
	done    chan struct{}
	expire  int64
}

func NewPostgresqlAuditLogger(ps PostgresqlSettings, expire int64) (AuditLogger, error) {
	connStr := fmt.Sprintf(`
                host=%s port=%d
                user=%s password=%s
                dbname=%s sslmode=%s
                sslcert=%s sslkey=%s
                sslrootcert=%s
                `,
		ps.Host, ps.Port,
		ps.User, ps.Password,
		ps.DB, ps.Sslmode,
		ps.Sslcert, ps.Sslkey,
		ps.Sslrootcert,
	)
	pc, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("can't connect to audit log postgresql: %w", err)
	}
	_, err = pc.Exec(`
                CREATE TABLE IF NOT EXISTS query_audit (
                        id BIGSERIAL NOT NULL,
                        run TEXT,
                        query TEXT,
                        result TEXT,
                        timestamp TIMESTAMP
                )
        `)
	if err != nil {
		pc.Close()
		return nil, fmt.Errorf("can't create audit table: %w", err)
	}
	auditLogger := &PostgresqlAuditLogger{
		backend: pc,
		mesgs:   make(chan *AuditMesg, AUDIT_LOG_OUTPUT_BUFFER),
		done:    make(chan struct{}),
		expire:  expire,
	}
	auditLogger.Expire()
	go auditLogger.Run()
	return auditLogger, nil
}

func (pl *PostgresqlAuditLogger) Run() {
	defer close(pl.done)
	for mesg := range pl.mesgs {
		_, err := pl.backend.Exec(`INSERT INTO query_audit (run, query, result, timestamp) VALUES ($1, $2, $3, $4)`,
			mesg.RunID, mesg.Query, mesg.Result, mesg.Timestamp,
		)
		if err != nil {
			logger.Error("Can't write to postgresql audit log: %v", err)
			continue
		}
	}
}

func (pl *PostgresqlAuditLogger) Write(mesg *AuditMesg) {
	pl.mesgs <- mesg
}

// Expire deletes rows older than the configured expiry. A run is short, so
// this happens once when the logger starts rather than on a timer.
func (pl *PostgresqlAuditLogger) Expire() {
	if pl.expire <= 0 {
		return
	}
	expireTime := time.Now().Add(time.Duration(-pl.expire) * time.Second)
	_, err := pl.backend.Exec(`DELETE FROM query_audit WHERE timestamp < $1`, expireTime)
	if err != nil {
		logger.Error("Can't expire postgresql audit log: %v", err)
	}
}

func (pl *PostgresqlAuditLogger) Close() {
	close(pl.mesgs)
	<-pl.done
	pl.backend.Close()
}
