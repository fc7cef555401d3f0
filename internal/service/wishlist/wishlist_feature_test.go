package wishlist

import (
	"context"
	"fmt"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/service/lock"

	"github.com/cucumber/godog"
)

type wishlistFeatureContext struct {
	products *stubProducts
	svc      *Service
	session  string
	current  Wishlist
}

func (c *wishlistFeatureContext) anEmptyWishlistForSession(session string) error {
	c.products = &stubProducts{products: map[string]domain.Product{}}
	svc, err := New(&stubRepo{}, c.products, lock.NewMemory(), Config{MutationTimeout: time.Second}, nil)
	if err != nil {
		return err
	}
	c.svc = svc
	c.session = session
	return nil
}

func (c *wishlistFeatureContext) theCatalogContainsProduct(alias string) error {
	c.products.products["prod-"+alias] = domain.Product{ID: "prod-" + alias, Name: alias, Price: 500}
	return nil
}

func (c *wishlistFeatureContext) iToggleProduct(alias string) error {
	_, w, err := c.svc.ToggleWishlist(context.Background(), c.session, c.products.products["prod-"+alias])
	c.current = w
	return err
}

func (c *wishlistFeatureContext) iAddProduct(alias string) error {
	w, err := c.svc.AddToWishlist(context.Background(), c.session, c.products.products["prod-"+alias])
	c.current = w
	return err
}

func (c *wishlistFeatureContext) productIsInTheWishlist(alias string) error {
	if !c.svc.IsInWishlist(context.Background(), c.session, "prod-"+alias) {
		return fmt.Errorf("expected %s in wishlist", alias)
	}
	return nil
}

func (c *wishlistFeatureContext) productIsNotInTheWishlist(alias string) error {
	if c.svc.IsInWishlist(context.Background(), c.session, "prod-"+alias) {
		return fmt.Errorf("expected %s not in wishlist", alias)
	}
	return nil
}

func (c *wishlistFeatureContext) theWishlistHasItems(n int) error {
	if len(c.current.Items) != n {
		return fmt.Errorf("expected %d items, got %d", n, len(c.current.Items))
	}
	return nil
}

func InitializeWishlistScenario(ctx *godog.ScenarioContext) {
	tc := &wishlistFeatureContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		*tc = wishlistFeatureContext{}
		return ctx, nil
	})

	ctx.Step(`^an empty wishlist for session "([^"]*)"$`, tc.anEmptyWishlistForSession)
	ctx.Step(`^the catalog contains product "([^"]*)"$`, tc.theCatalogContainsProduct)
	ctx.Step(`^I toggle product "([^"]*)"$`, tc.iToggleProduct)
	ctx.Step(`^I add product "([^"]*)" to the wishlist$`, tc.iAddProduct)
	ctx.Step(`^product "([^"]*)" is in the wishlist$`, tc.productIsInTheWishlist)
	ctx.Step(`^product "([^"]*)" is not in the wishlist$`, tc.productIsNotInTheWishlist)
	ctx.Step(`^the wishlist has (\d+) items?$`, tc.theWishlistHasItems)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeWishlistScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/wishlist.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
