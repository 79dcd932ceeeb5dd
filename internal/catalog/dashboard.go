package catalog

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
)

// recentProducts is how many products the dashboard lists.
const recentProducts = 5

// Dashboard summarises both collections for the admin landing view.
type Dashboard struct {
	TotalProducts  int              `json:"total_products"`
	TotalUsers     int              `json:"total_users"`
	RecentProducts []domain.Product `json:"recent_products"`
}

// LoadDashboard refreshes products and users concurrently.
func LoadDashboard(ctx context.Context, products *Products, users *Users) (*Dashboard, error) {
	g, ctx := errgroup.WithContext(ctx)

	var (
		productList []domain.Product
		userList    []domain.UserIdentity
	)
	g.Go(func() error {
		var err error
		productList, err = products.List(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		userList, err = users.List(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	recent := productList
	if len(recent) > recentProducts {
		recent = recent[:recentProducts]
	}
	return &Dashboard{
		TotalProducts:  len(productList),
		TotalUsers:     len(userList),
		RecentProducts: recent,
	}, nil
}
