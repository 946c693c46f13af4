package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"conectame/internal/models"
)

var ErrClientNotFound = errors.New("client not found")

const clientColumns = `id, name, email, phone, company, status, note, reminder_date`

type ClientRepository struct {
	db DBTX
}

func NewClientRepository(db DBTX) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, fields models.ClientFields) (models.Client, error) {
	const query = `
		INSERT INTO clients (name, email, phone, company, status, note, reminder_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	client := models.Client{ClientFields: fields}
	if err := r.db.QueryRow(ctx, query,
		fields.Name,
		fields.Email,
		fields.Phone,
		fields.Company,
		fields.Status,
		fields.Note,
		fields.ReminderDate,
	).Scan(&client.ID); err != nil {
		return models.Client{}, fmt.Errorf("insert client: %w", err)
	}
	return client, nil
}

func (r *ClientRepository) Get(ctx context.Context, id int64) (models.Client, error) {
	const query = `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	client, err := scanClient(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Client{}, ErrClientNotFound
		}
		return models.Client{}, fmt.Errorf("select client: %w", err)
	}
	return client, nil
}

// Update replaces every mutable field of the client in one statement.
func (r *ClientRepository) Update(ctx context.Context, id int64, fields models.ClientFields) (models.Client, error) {
	const query = `
		UPDATE clients
		SET name = $2,
		    email = $3,
		    phone = $4,
		    company = $5,
		    status = $6,
		    note = $7,
		    reminder_date = $8
		WHERE id = $1
		RETURNING ` + clientColumns

	client, err := scanClient(r.db.QueryRow(ctx, query,
		id,
		fields.Name,
		fields.Email,
		fields.Phone,
		fields.Company,
		fields.Status,
		fields.Note,
		fields.ReminderDate,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Client{}, ErrClientNotFound
		}
		return models.Client{}, fmt.Errorf("update client: %w", err)
	}
	return client, nil
}

func (r *ClientRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM clients WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrClientNotFound
	}
	return nil
}

// Search returns clients whose name, email or company contains term,
// ignoring case. An empty term returns every client. Results are ordered by id.
func (r *ClientRepository) Search(ctx context.Context, term string) ([]models.Client, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if term == "" {
		const query = `SELECT ` + clientColumns + ` FROM clients ORDER BY id`
		rows, err = r.db.Query(ctx, query)
	} else {
		const query = `
			SELECT ` + clientColumns + `
			FROM clients
			WHERE name ILIKE $1 ESCAPE '\'
			   OR email ILIKE $1 ESCAPE '\'
			   OR company ILIKE $1 ESCAPE '\'
			ORDER BY id
		`
		rows, err = r.db.Query(ctx, query, "%"+escapeLike(term)+"%")
	}
	if err != nil {
		return nil, fmt.Errorf("search clients: %w", err)
	}
	defer rows.Close()

	clients := make([]models.Client, 0)
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

func (r *ClientRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM clients`
	var count int
	if err := r.db.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count clients: %w", err)
	}
	return count, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE metacharacters in term match literally.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

func scanClient(row pgx.Row) (models.Client, error) {
	var client models.Client
	err := row.Scan(
		&client.ID,
		&client.Name,
		&client.Email,
		&client.Phone,
		&client.Company,
		&client.Status,
		&client.Note,
		&client.ReminderDate,
	)
	return client, err
}
