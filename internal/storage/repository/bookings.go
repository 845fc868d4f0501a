package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/bloom-gym/internal/models"
)

const bookingColumns = `id, owner_id, program_title, category, date, time, note, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner, b *models.Booking) error {
	return row.Scan(&b.ID, &b.OwnerID, &b.ProgramTitle, &b.Category, &b.Date,
		&b.Time, &b.Note, &b.Status, &b.CreatedAt, &b.UpdatedAt)
}

// CreateBooking сохраняет новую запись без проверки лимита.
// Идентификатор и временные метки назначает база.
func (s *Storage) CreateBooking(ctx context.Context, booking models.Booking) (*models.Booking, error) {
	const op = "storage.CreateBooking"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	ownerID, err := parseID(op, booking.OwnerID)
	if err != nil {
		return nil, err
	}

	created, err := insertBooking(ctx, s.DB, ownerID.String(), booking)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// CreateBookingTx считает активные записи владельца и вставляет новую в одной
// транзакции. Строка владельца блокируется FOR UPDATE, поэтому параллельные
// создания для одного владельца выполняются по очереди. admit получает число
// активных записей; его ошибка откатывает транзакцию и возвращается как есть.
func (s *Storage) CreateBookingTx(ctx context.Context, booking models.Booking, admit func(active int) error) (*models.Booking, error) {
	const op = "storage.CreateBookingTx"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	ownerID, err := parseID(op, booking.OwnerID)
	if err != nil {
		return nil, err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var lockedID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, ownerID).Scan(&lockedID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: owner: %w", op, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: lock owner: %w", op, err)
	}

	var active int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE owner_id = $1 AND status = $2`,
		ownerID, string(models.StatusBooked)).Scan(&active)
	if err != nil {
		return nil, fmt.Errorf("%s: count: %w", op, err)
	}
	if err = admit(active); err != nil {
		return nil, err
	}

	created, err := insertBooking(ctx, tx, ownerID.String(), booking)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}
	return created, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertBooking(ctx context.Context, q queryRower, ownerID string, b models.Booking) (*models.Booking, error) {
	query := `INSERT INTO bookings (owner_id, program_title, category, date, time, note, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING ` + bookingColumns
	var created models.Booking
	row := q.QueryRowContext(ctx, query, ownerID, b.ProgramTitle, string(b.Category),
		b.Date, b.Time, b.Note, string(models.StatusBooked))
	if err := scanBooking(row, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// CountActiveBookings возвращает число записей владельца в статусе booked.
func (s *Storage) CountActiveBookings(ctx context.Context, ownerID string) (int, error) {
	const op = "storage.CountActiveBookings"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}
	id, err := parseID(op, ownerID)
	if err != nil {
		return 0, err
	}

	var count int
	err = s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE owner_id = $1 AND status = $2`,
		id, string(models.StatusBooked)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// GetBooking возвращает запись по идентификатору.
func (s *Storage) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	const op = "storage.GetBooking"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	id, err := parseID(op, bookingID)
	if err != nil {
		return nil, err
	}

	var b models.Booking
	row := s.DB.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if err = scanBooking(row, &b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &b, nil
}

// ListBookingsByOwner возвращает записи владельца, новые первыми.
func (s *Storage) ListBookingsByOwner(ctx context.Context, ownerID string) ([]models.Booking, error) {
	const op = "storage.ListBookingsByOwner"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	id, err := parseID(op, ownerID)
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE owner_id = $1 ORDER BY created_at DESC, id`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Booking, 0)
	for rows.Next() {
		var b models.Booking
		if err = scanBooking(rows, &b); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListAllBookings возвращает все записи с данными владельцев, новые первыми.
func (s *Storage) ListAllBookings(ctx context.Context) ([]models.BookingWithOwner, error) {
	const op = "storage.ListAllBookings"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT b.id, b.owner_id, b.program_title, b.category, b.date, b.time, b.note,
			      b.status, b.created_at, b.updated_at,
			      u.name, u.surname, u.email, u.phone, u.role
			  FROM bookings b
			  JOIN users u ON u.id = b.owner_id
			  ORDER BY b.created_at DESC, b.id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.BookingWithOwner, 0)
	for rows.Next() {
		var b models.BookingWithOwner
		if err = rows.Scan(&b.ID, &b.OwnerID, &b.ProgramTitle, &b.Category, &b.Date,
			&b.Time, &b.Note, &b.Status, &b.CreatedAt, &b.UpdatedAt,
			&b.Owner.Name, &b.Owner.Surname, &b.Owner.Email, &b.Owner.Phone, &b.Owner.Role,
		); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateBooking частично обновляет запись: nil-поля изменения не трогаются.
// Обновляется только запись в статусе booked: для отменённой возвращается
// ErrInvalidTransition, даже если отмена произошла после чтения вызывающим.
func (s *Storage) UpdateBooking(ctx context.Context, bookingID string, patch models.BookingPatch) (*models.Booking, error) {
	const op = "storage.UpdateBooking"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	id, err := parseID(op, bookingID)
	if err != nil {
		return nil, err
	}

	var category, status *string
	if patch.Category != nil {
		v := string(*patch.Category)
		category = &v
	}
	if patch.Status != nil {
		v := string(*patch.Status)
		status = &v
	}

	query := `UPDATE bookings
			  SET program_title = COALESCE($2::text, program_title),
			      category      = COALESCE($3::text, category),
			      date          = COALESCE($4::date, date),
			      time          = COALESCE($5::text, time),
			      note          = COALESCE($6::text, note),
			      status        = COALESCE($7::text, status),
			      updated_at    = NOW()
			  WHERE id = $1 AND status = $8
			  RETURNING ` + bookingColumns
	var b models.Booking
	row := s.DB.QueryRowContext(ctx, query, id, patch.ProgramTitle, category,
		patch.Date, patch.Time, patch.Note, status, string(models.StatusBooked))
	err = scanBooking(row, &b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, s.missingOrFrozen(ctx, id.String()))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &b, nil
}

// missingOrFrozen объясняет, почему условный UPDATE не затронул строку.
func (s *Storage) missingOrFrozen(ctx context.Context, id string) error {
	var status string
	err := s.DB.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = $1`, id).Scan(&status)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return models.ErrNotFound
	case err != nil:
		return err
	default:
		return fmt.Errorf("%w: booking is %s", models.ErrInvalidTransition, status)
	}
}

// DeleteBooking удаляет запись.
func (s *Storage) DeleteBooking(ctx context.Context, bookingID string) error {
	const op = "storage.DeleteBooking"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	id, err := parseID(op, bookingID)
	if err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}

// FindBookingsToRemind возвращает активные записи на указанный день, по которым
// напоминание на эту дату ещё не отмечено.
func (s *Storage) FindBookingsToRemind(ctx context.Context, day time.Time) ([]models.Booking, error) {
	const op = "storage.FindBookingsToRemind"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE date = $1::date AND status = $2 AND reminded_for IS DISTINCT FROM date
		 ORDER BY time, id`,
		day.Format(models.DateLayout), string(models.StatusBooked))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Booking
	for rows.Next() {
		var b models.Booking
		if err = scanBooking(rows, &b); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// MarkReminded отмечает, что напоминание о занятии в день day отправлено.
// Если дату записи потом перенесут, напоминание уйдёт снова.
func (s *Storage) MarkReminded(ctx context.Context, bookingID string, day time.Time) error {
	const op = "storage.MarkReminded"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	id, err := parseID(op, bookingID)
	if err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE bookings SET reminded_for = $2::date WHERE id = $1`,
		id, day.Format(models.DateLayout))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}
