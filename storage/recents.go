package storage

import (
	"errors"
	"fmt"
)

// RecentHostLimit caps how many recent hosts are retained, most recent first.
const RecentHostLimit = 10

// RecentHost is one previously connected host, keyed by address.
type RecentHost struct {
	Address       string
	Name          string
	LastConnected int64
}

// UpsertRecentHost records a successful connection to address, bumping it to
// the top of the recency order and pruning entries beyond RecentHostLimit.
func (s *Store) UpsertRecentHost(address, name string) error {
	if address == "" {
		return errors.New("address is required")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin recent host transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.Exec(
		`INSERT INTO recent_hosts (address, name, last_connected) VALUES (?, ?, ?)
		 ON CONFLICT(address) DO UPDATE SET
		   name = excluded.name,
		   last_connected = excluded.last_connected`,
		address, name, nowUnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert recent host %q: %w", address, err)
	}

	_, err = tx.Exec(
		`DELETE FROM recent_hosts WHERE address NOT IN (
		   SELECT address FROM recent_hosts
		   ORDER BY last_connected DESC, address
		   LIMIT ?
		 )`,
		RecentHostLimit,
	)
	if err != nil {
		return fmt.Errorf("prune recent hosts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit recent host transaction: %w", err)
	}

	return nil
}

// ListRecentHosts returns all retained hosts, most recently connected first.
func (s *Store) ListRecentHosts() ([]RecentHost, error) {
	rows, err := s.db.Query(
		`SELECT address, name, last_connected
		 FROM recent_hosts
		 ORDER BY last_connected DESC, address`,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent hosts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []RecentHost
	for rows.Next() {
		var host RecentHost
		if err := rows.Scan(&host.Address, &host.Name, &host.LastConnected); err != nil {
			return nil, fmt.Errorf("scan recent host: %w", err)
		}
		out = append(out, host)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent hosts: %w", err)
	}

	return out, nil
}

// DeleteRecentHost removes one host by address, if present.
func (s *Store) DeleteRecentHost(address string) error {
	if _, err := s.db.Exec(`DELETE FROM recent_hosts WHERE address = ?`, address); err != nil {
		return fmt.Errorf("delete recent host %q: %w", address, err)
	}
	return nil
}
