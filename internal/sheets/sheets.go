package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"ivyresort/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ErrRowNotFound means the reservation has no row in the spreadsheet yet.
var ErrRowNotFound = errors.New("reservation row not found")

const reservationsSheet = "Reservations"

// Service mirrors the reservation list into a staff spreadsheet. The row
// cache maps reservation ids to sheet rows to avoid a column scan per write.
type Service struct {
	service       *sheets.Service
	spreadsheetID string

	cacheMu  sync.RWMutex
	rowCache map[int64]int
}

func NewService(ctx context.Context, credentialsFile, spreadsheetID string) (*Service, error) {
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return &Service{
		service:       srv,
		spreadsheetID: spreadsheetID,
		rowCache:      make(map[int64]int),
	}, nil
}

// TestConnection reads one cell to verify access.
func (s *Service) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, reservationsSheet+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// WarmUpCache populates the row index cache from the ID column.
func (s *Service) WarmUpCache(ctx context.Context) error {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, reservationsSheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return err
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[int64]int)

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		var id int64
		switch v := row[0].(type) {
		case float64:
			id = int64(v)
		case string:
			id, _ = strconv.ParseInt(v, 10, 64)
		}
		if id > 0 {
			s.rowCache[id] = i + 1
		}
	}
	return nil
}

func (s *Service) findRow(id int64) (int, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	row, ok := s.rowCache[id]
	return row, ok
}

func (s *Service) cacheRow(id int64, row int) {
	s.cacheMu.Lock()
	s.rowCache[id] = row
	s.cacheMu.Unlock()
}

func (s *Service) dropCacheRow(id int64) {
	s.cacheMu.Lock()
	delete(s.rowCache, id)
	s.cacheMu.Unlock()
}

func reservationRowValues(res *models.Reservation) []interface{} {
	return []interface{}{
		res.ID,
		res.ConfirmationID,
		res.GuestName,
		res.Email,
		res.RoomName,
		res.CheckIn,
		res.CheckOut,
		res.Guests,
		res.TotalAmount,
		res.Status,
		res.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// UpsertReservation updates the reservation's row or appends a new one.
func (s *Service) UpsertReservation(ctx context.Context, res *models.Reservation) error {
	if res == nil {
		return fmt.Errorf("reservation is nil")
	}

	rowIdx, ok := s.findRow(res.ID)
	if !ok {
		return s.appendReservation(ctx, res)
	}

	rangeData := fmt.Sprintf("%s!A%d:K%d", reservationsSheet, rowIdx, rowIdx)
	valueRange := &sheets.ValueRange{Values: [][]interface{}{reservationRowValues(res)}}

	_, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, rangeData, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (s *Service) appendReservation(ctx context.Context, res *models.Reservation) error {
	valueRange := &sheets.ValueRange{Values: [][]interface{}{reservationRowValues(res)}}

	resp, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, reservationsSheet+"!A:A", valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return err
	}

	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		// Range looks like "Reservations!A12:K12"; remember row 12.
		var row int
		if _, err := fmt.Sscanf(resp.Updates.UpdatedRange, reservationsSheet+"!A%d", &row); err == nil && row > 0 {
			s.cacheRow(res.ID, row)
		}
	}
	return nil
}

// DeleteReservationRow clears the row for a reservation id.
func (s *Service) DeleteReservationRow(ctx context.Context, id int64) error {
	rowIdx, ok := s.findRow(id)
	if !ok {
		return ErrRowNotFound
	}

	rangeData := fmt.Sprintf("%s!A%d:K%d", reservationsSheet, rowIdx, rowIdx)
	_, err := s.service.Spreadsheets.Values.Clear(s.spreadsheetID, rangeData, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err == nil {
		s.dropCacheRow(id)
	}
	return err
}

// UpdateReservationStatus rewrites status and updated-at cells only.
func (s *Service) UpdateReservationStatus(ctx context.Context, id int64, status string, updatedAt string) error {
	rowIdx, ok := s.findRow(id)
	if !ok {
		return ErrRowNotFound
	}

	rangeData := fmt.Sprintf("%s!J%d:K%d", reservationsSheet, rowIdx, rowIdx)
	valueRange := &sheets.ValueRange{Values: [][]interface{}{{status, updatedAt}}}

	_, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, rangeData, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}
