package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TOTPRepository persists 2FA verification attempts for rate limiting.
type TOTPRepository struct {
	DB *pgxpool.Pool
}

func NewTOTPRepository(db *pgxpool.Pool) *TOTPRepository {
	return &TOTPRepository{DB: db}
}

// RecordAttempt logs a verification attempt
func (r *TOTPRepository) RecordAttempt(ctx context.Context, userID int, ipAddress string, success bool) error {
	_, err := r.DB.Exec(ctx,
		`INSERT INTO totp_verification_attempts(user_id, ip_address, success) VALUES($1, $2, $3)`,
		userID, ipAddress, success)
	return err
}

// CountRecentFailures counts failed attempts for a user within the window
func (r *TOTPRepository) CountRecentFailures(ctx context.Context, userID int, window time.Duration) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM totp_verification_attempts
		 WHERE user_id=$1 AND success=FALSE AND created_at > NOW() - make_interval(secs => $2)`,
		userID, window.Seconds()).Scan(&count)
	return count, err
}

// PruneOld removes attempts older than the retention period
func (r *TOTPRepository) PruneOld(ctx context.Context, retention time.Duration) error {
	_, err := r.DB.Exec(ctx,
		`DELETE FROM totp_verification_attempts WHERE created_at < NOW() - make_interval(secs => $1)`,
		retention.Seconds())
	return err
}
