package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/internal/cart"
	inErrors "github.com/Alturino/storefront/internal/errors"
)

type DBTX interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Order is the archived record of a captured payment, written once the
// provider reports the capture as completed.
type Order struct {
	ID              uuid.UUID       `json:"id"`
	ProviderOrderID string          `json:"provider_order_id"`
	PayerName       string          `json:"payer_name"`
	Currency        string          `json:"currency"`
	Total           decimal.Decimal `json:"total"`
	CreatedAt       time.Time       `json:"created_at"`
}

type OrderItem struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"order_id"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
}

type OrderRepository struct {
	db DBTX
}

func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

const insertOrder = `
insert into orders (id, provider_order_id, payer_name, currency, total)
values ($1, $2, $3, $4, $5)
`

const insertOrderItem = `
insert into order_items (id, order_id, product_id, name, price, image, quantity)
values ($1, $2, $3, $4, $5, $6, $7)
`

// InsertOrder archives the order header and its line items in one
// transaction. The whole archive is rolled back when any insert fails.
func (r *OrderRepository) InsertOrder(
	c context.Context,
	providerOrderId string,
	payerName string,
	currency string,
	items cart.Cart,
) (Order, error) {
	tx, err := r.db.Begin(c)
	if err != nil {
		return Order{}, fmt.Errorf("failed beginning transaction with error=%w", err)
	}
	defer func() {
		_ = tx.Rollback(c)
	}()

	order := Order{
		ID:              uuid.New(),
		ProviderOrderID: providerOrderId,
		PayerName:       payerName,
		Currency:        currency,
		Total:           items.Total(),
		CreatedAt:       time.Now(),
	}
	_, err = tx.Exec(
		c,
		insertOrder,
		order.ID,
		order.ProviderOrderID,
		order.PayerName,
		order.Currency,
		decimalToNumeric(order.Total),
	)
	if err != nil {
		return Order{}, fmt.Errorf("failed inserting order with error=%w", err)
	}

	for _, item := range items {
		_, err = tx.Exec(
			c,
			insertOrderItem,
			uuid.New(),
			order.ID,
			item.ID,
			item.Name,
			decimalToNumeric(item.Price),
			item.Image,
			item.Quantity,
		)
		if err != nil {
			return Order{}, fmt.Errorf(
				"failed inserting order item productId=%s with error=%w",
				item.ID,
				err,
			)
		}
	}

	if err = tx.Commit(c); err != nil {
		return Order{}, fmt.Errorf("failed committing transaction with error=%w", err)
	}
	return order, nil
}

const findOrderById = `
select id, provider_order_id, payer_name, currency, total, created_at
from orders
where id = $1
`

func (r *OrderRepository) FindOrderById(c context.Context, id uuid.UUID) (Order, error) {
	var order Order
	var total pgtype.Numeric
	err := r.db.QueryRow(c, findOrderById, id).Scan(
		&order.ID,
		&order.ProviderOrderID,
		&order.PayerName,
		&order.Currency,
		&total,
		&order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, inErrors.ErrOrderNotFound
		}
		return Order{}, fmt.Errorf("failed finding orderId=%s with error=%w", id.String(), err)
	}
	order.Total, err = numericToDecimal(total)
	if err != nil {
		return Order{}, fmt.Errorf("failed converting total with error=%w", err)
	}
	return order, nil
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{
		Exp:              d.Exponent(),
		InfinityModifier: pgtype.Finite,
		Int:              d.Coefficient(),
		NaN:              false,
		Valid:            true,
	}
}

func numericToDecimal(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite {
		return decimal.Decimal{}, errors.New("numeric value is not finite")
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}
