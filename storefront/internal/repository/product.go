package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	inErrors "github.com/Alturino/storefront/internal/errors"
)

type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Product struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type ProductRepository struct {
	db DBTX
}

func NewProductRepository(db DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

const insertProduct = `
insert into products (id, name, price, image)
values ($1, $2, $3, $4)
returning id, name, price, image, created_at, updated_at
`

func (r *ProductRepository) InsertProduct(
	c context.Context,
	name string,
	price decimal.Decimal,
	image string,
) (Product, error) {
	row := r.db.QueryRow(c, insertProduct, uuid.New(), name, decimalToNumeric(price), image)
	product, err := scanProduct(row)
	if err != nil {
		return Product{}, fmt.Errorf("failed inserting product with error=%w", err)
	}
	return product, nil
}

const findProducts = `
select id, name, price, image, created_at, updated_at
from products
order by created_at
`

func (r *ProductRepository) FindProducts(c context.Context) ([]Product, error) {
	rows, err := r.db.Query(c, findProducts)
	if err != nil {
		return nil, fmt.Errorf("failed finding products with error=%w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed scanning product with error=%w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating products with error=%w", err)
	}
	return products, nil
}

const findProductById = `
select id, name, price, image, created_at, updated_at
from products
where id = $1
`

func (r *ProductRepository) FindProductById(c context.Context, id uuid.UUID) (Product, error) {
	row := r.db.QueryRow(c, findProductById, id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, inErrors.ErrProductNotFound
		}
		return Product{}, fmt.Errorf("failed finding productId=%s with error=%w", id.String(), err)
	}
	return product, nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var product Product
	var price pgtype.Numeric
	err := row.Scan(
		&product.ID,
		&product.Name,
		&price,
		&product.Image,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return Product{}, err
	}
	product.Price, err = numericToDecimal(price)
	if err != nil {
		return Product{}, err
	}
	return product, nil
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
