package db

import (
	"context"
	"fmt"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/Javohir11011/Hisob-kitob-bot/account"
	"github.com/Javohir11011/Hisob-kitob-bot/debtor"
)

const (
	fuzzyLimit        = 10
	fuzzyMinimumScore = 75
)

// matchNames fuzzy-matches query against the candidate names and returns the
// matched names, best score first. Queries that look like (part of) a phone
// number are handled by the callers with a substring scan instead.
func matchNames(query string, names []string) ([]string, error) {
	findings, err := fuzzy.Extract(query, names, fuzzyLimit, fuzzyMinimumScore, fuzzy.UQRatio)
	if err != nil {
		return nil, fmt.Errorf("fuzzy search: %w", err)
	}

	matched := make([]string, 0, len(findings))
	for _, finding := range findings {
		matched = append(matched, finding.Match)
	}
	return matched, nil
}

func (d *DBStore) searchAccounts(ctx context.Context, role account.Role, query string) ([]*account.Account, error) {
	all, err := d.ListAccounts(ctx, account.ListFilter{Role: role})
	if err != nil {
		return nil, err
	}

	found := []*account.Account{}
	seen := map[string]bool{}

	for _, a := range all {
		if strings.Contains(a.Phone, query) {
			found = append(found, a)
			seen[a.ID] = true
		}
	}

	names := make([]string, 0, len(all))
	byName := make(map[string][]*account.Account, len(all))
	for _, a := range all {
		names = append(names, a.Name)
		byName[a.Name] = append(byName[a.Name], a)
	}

	matched, err := matchNames(query, names)
	if err != nil {
		return nil, err
	}
	for _, name := range matched {
		for _, a := range byName[name] {
			if !seen[a.ID] {
				found = append(found, a)
				seen[a.ID] = true
			}
		}
	}

	return found, nil
}

// SearchDebtors matches names fuzzily and phones by substring within one shop.
func (d *DBStore) SearchDebtors(ctx context.Context, shopID, query string) ([]*debtor.Debtor, error) {
	all, err := d.ListDebtorsForShop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	found := []*debtor.Debtor{}
	seen := map[string]bool{}

	for _, dr := range all {
		if strings.Contains(dr.Phone, query) {
			found = append(found, dr)
			seen[dr.ID] = true
		}
	}

	names := make([]string, 0, len(all))
	byName := make(map[string][]*debtor.Debtor, len(all))
	for _, dr := range all {
		names = append(names, dr.Name)
		byName[dr.Name] = append(byName[dr.Name], dr)
	}

	matched, err := matchNames(query, names)
	if err != nil {
		return nil, err
	}
	for _, name := range matched {
		for _, dr := range byName[name] {
			if !seen[dr.ID] {
				found = append(found, dr)
				seen[dr.ID] = true
			}
		}
	}

	return found, nil
}
