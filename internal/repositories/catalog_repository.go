package repositories

import (
	"context"
	"database/sql"
	"fmt"

	intconfig "tripquote/internal/config"
	intdb "tripquote/internal/db"
	"tripquote/internal/domain"
	"tripquote/internal/domain/models"
)

const (
	tableLocations = "locations"
	tableRoutes    = "transport_routes"
	tableRules     = "transport_pricing_rules"
)

// CatalogRepository reads active locations, routes and pricing rules. Rows
// from older schemas that lack newer optional columns are still loaded.
type CatalogRepository struct {
	DB              *sql.DB
	DefaultCurrency string
}

func (r CatalogRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// Load returns one snapshot of the active catalog.
func (r CatalogRepository) Load(ctx context.Context) (models.Catalog, error) {
	db := r.db()
	if db == nil {
		return models.Catalog{}, domain.InternalError{Msg: "database belum terhubung"}
	}

	locations, err := r.listLocations(ctx, db)
	if err != nil {
		return models.Catalog{}, err
	}
	routes, err := r.listRoutes(ctx, db)
	if err != nil {
		return models.Catalog{}, err
	}
	rules, err := r.listRules(ctx, db)
	if err != nil {
		return models.Catalog{}, err
	}
	return models.Catalog{Locations: locations, Routes: routes, Rules: rules}, nil
}

func activeClause(cols intdb.ColumnSet) string {
	if cols.Has("is_active") {
		return "WHERE COALESCE(is_active, 1) = 1"
	}
	return ""
}

func requireColumns(table string, cols intdb.ColumnSet, required ...string) error {
	if len(cols) == 0 {
		return domain.InternalError{Msg: fmt.Sprintf("tabel %s tidak ditemukan", table)}
	}
	for _, c := range required {
		if !cols.Has(c) {
			return domain.InternalError{Msg: fmt.Sprintf("kolom %s.%s tidak ditemukan", table, c)}
		}
	}
	return nil
}

func (r CatalogRepository) listLocations(ctx context.Context, db *sql.DB) ([]models.Location, error) {
	cols, err := intdb.Columns(ctx, db, tableLocations)
	if err != nil {
		return nil, domain.InternalError{Msg: "gagal membaca skema locations", Err: err}
	}
	if err := requireColumns(tableLocations, cols, "id", "name"); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, COALESCE(name, ''), %s, %s, %s, %s
		FROM %s
		%s
		ORDER BY id ASC
	`,
		cols.SelectNullable("name_alt"),
		cols.SelectNullable("code"),
		cols.SelectNullable("kind"),
		cols.SelectNullable("is_active"),
		tableLocations,
		activeClause(cols),
	)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, domain.InternalError{Msg: "gagal query locations", Err: err}
	}
	defer rows.Close()

	out := []models.Location{}
	for rows.Next() {
		var row locationRow
		if err := rows.Scan(&row.ID, &row.Name, &row.NameAlt, &row.Code, &row.Kind, &row.IsActive); err != nil {
			return nil, domain.InternalError{Msg: "gagal membaca locations", Err: err}
		}
		out = append(out, locationFromRow(row))
	}
	return out, rows.Err()
}

func (r CatalogRepository) listRoutes(ctx context.Context, db *sql.DB) ([]models.Route, error) {
	cols, err := intdb.Columns(ctx, db, tableRoutes)
	if err != nil {
		return nil, domain.InternalError{Msg: "gagal membaca skema transport_routes", Err: err}
	}
	if err := requireColumns(tableRoutes, cols, "id", "origin_id", "destination_id", "day_price"); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, origin_id, destination_id, COALESCE(day_price, 0),
			%s, %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		%s
		ORDER BY id ASC
	`,
		cols.SelectNullable("night_price"),
		cols.SelectNullable("currency"),
		cols.SelectNullable("included_passengers"),
		cols.SelectNullable("included_bags"),
		cols.SelectNullable("included_large_bags"),
		cols.SelectNullable("max_passengers"),
		cols.SelectNullable("max_bags"),
		cols.SelectNullable("allows_round_trip"),
		cols.SelectNullable("round_trip_multiplier"),
		cols.SelectNullable("is_active"),
		tableRoutes,
		activeClause(cols),
	)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, domain.InternalError{Msg: "gagal query transport_routes", Err: err}
	}
	defer rows.Close()

	out := []models.Route{}
	for rows.Next() {
		var row routeRow
		if err := rows.Scan(
			&row.ID, &row.OriginID, &row.DestinationID, &row.DayPrice,
			&row.NightPrice,
			&row.Currency,
			&row.IncludedPassengers,
			&row.IncludedBags,
			&row.IncludedLargeBags,
			&row.MaxPassengers,
			&row.MaxBags,
			&row.AllowsRoundTrip,
			&row.RoundTripMultiplier,
			&row.IsActive,
		); err != nil {
			return nil, domain.InternalError{Msg: "gagal membaca transport_routes", Err: err}
		}
		out = append(out, routeFromRow(row, r.DefaultCurrency))
	}
	return out, rows.Err()
}

func (r CatalogRepository) listRules(ctx context.Context, db *sql.DB) ([]models.PricingRule, error) {
	cols, err := intdb.Columns(ctx, db, tableRules)
	if err != nil {
		return nil, domain.InternalError{Msg: "gagal membaca skema transport_pricing_rules", Err: err}
	}
	// no rule table at all is a valid catalog: every route prices with the default rule
	if len(cols) == 0 {
		return []models.PricingRule{}, nil
	}
	if err := requireColumns(tableRules, cols, "id", "route_id"); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, route_id,
			%s, %s, %s, %s, %s,
			%s, %s, %s, %s,
			%s, %s, %s, %s, %s,
			%s, %s, %s, %s,
			%s, %s
		FROM %s
		%s
		ORDER BY id ASC
	`,
		cols.SelectNullable("extra_passenger_fee"),
		cols.SelectNullable("extra_bag_fee"),
		cols.SelectNullable("oversize_bag_fee"),
		cols.SelectNullable("child_seat_fee"),
		cols.SelectNullable("booster_seat_fee"),
		cols.SelectNullable("waiting_included_minutes"),
		cols.SelectNullable("waiting_fee_per_hour"),
		cols.SelectNullable("waiting_fee_per_minute"),
		cols.SelectNullable("waiting_billing"),
		cols.SelectNullable("night_start"),
		cols.SelectNullable("night_end"),
		cols.SelectNullable("valid_from"),
		cols.SelectNullable("valid_to"),
		cols.SelectNullable("priority"),
		cols.SelectNullable("deposit_enabled"),
		cols.SelectNullable("deposit_mode"),
		cols.SelectNullable("deposit_value"),
		cols.SelectNullable("deposit_base_floor"),
		cols.SelectNullable("is_active"),
		cols.SelectNullable("updated_at"),
		tableRules,
		activeClause(cols),
	)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, domain.InternalError{Msg: "gagal query transport_pricing_rules", Err: err}
	}
	defer rows.Close()

	out := []models.PricingRule{}
	for rows.Next() {
		var row ruleRow
		if err := rows.Scan(
			&row.ID, &row.RouteID,
			&row.ExtraPassengerFee,
			&row.ExtraBagFee,
			&row.OversizeBagFee,
			&row.ChildSeatFee,
			&row.BoosterSeatFee,
			&row.WaitingIncludedMinutes,
			&row.WaitingFeePerHour,
			&row.WaitingFeePerMinute,
			&row.WaitingBilling,
			&row.NightStart,
			&row.NightEnd,
			&row.ValidFrom,
			&row.ValidTo,
			&row.Priority,
			&row.DepositEnabled,
			&row.DepositMode,
			&row.DepositValue,
			&row.DepositBaseFloor,
			&row.IsActive,
			&row.UpdatedAt,
		); err != nil {
			return nil, domain.InternalError{Msg: "gagal membaca transport_pricing_rules", Err: err}
		}
		out = append(out, ruleFromRow(row))
	}
	return out, rows.Err()
}
