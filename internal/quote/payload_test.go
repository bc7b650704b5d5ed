package quote

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPayloadCompositeGrouping(t *testing.T) {
	cart := &fakeCart{
		items: []LineItem{
			// child listed before its parent: grouping must not depend on order
			{ProductID: "child", Type: TypeSimple, Weight: 0, Qty: 1, ParentSKU: "PARENT"},
			{ProductID: "parent", Type: TypeConfigurable, Weight: 1.5, Qty: 2},
		},
		products: map[string]Product{
			"parent": {
				ID:         "parent",
				SKU:        "PARENT",
				Type:       TypeConfigurable,
				Attributes: map[string]string{"height": "15", "width": "25", "length": "35"},
			},
			"child": {
				ID:         "child",
				SKU:        "CHILD",
				Type:       TypeSimple,
				FinalPrice: 80,
			},
		},
	}
	svc := newTestService(cart, &fakeClient{}, baseConfig())

	built, err := svc.buildPayload(context.Background(), quoteRequestFixture(), ResolveSettings(baseConfig()))
	require.NoError(t, err)
	require.Len(t, built.payload.Products, 1)

	entry := built.payload.Products[0]
	// parent dimensions win over contingencies for the attribute-less child
	require.Equal(t, 15.0, entry.Height)
	require.Equal(t, 25.0, entry.Width)
	require.Equal(t, 35.0, entry.Length)
	require.Equal(t, 1.5, entry.Weight)
	require.Equal(t, 80.0, entry.CostOfGoods)
	// child qty multiplied by the parent line qty
	require.Equal(t, 2, entry.Quantity)
	require.True(t, entry.CanGroup)

	require.Equal(t, 2.0, built.totalItems)
	require.Equal(t, 3.0, built.payload.CartWeight)
	require.Equal(t, 160.0, built.payload.CartAmount)
	require.Equal(t, 2.0, built.payload.CartQtys)
}

func TestBuildPayloadContingencyFallback(t *testing.T) {
	cart := &fakeCart{
		items: []LineItem{
			{ProductID: "p1", Type: TypeSimple, Weight: 0, Qty: 1},
		},
		products: map[string]Product{
			"p1": {ID: "p1", SKU: "SKU-1", Type: TypeSimple, FinalPrice: 10},
		},
	}
	svc := newTestService(cart, &fakeClient{}, baseConfig())

	built, err := svc.buildPayload(context.Background(), quoteRequestFixture(), ResolveSettings(baseConfig()))
	require.NoError(t, err)
	require.Len(t, built.payload.Products, 1)

	entry := built.payload.Products[0]
	require.Equal(t, 2.0, entry.Height)
	require.Equal(t, 11.0, entry.Width)
	require.Equal(t, 16.0, entry.Length)
	require.Equal(t, 0.5, entry.Weight)
}

func TestBuildPayloadWeightInGrams(t *testing.T) {
	cfg := baseConfig()
	cfg["weight_unit"] = "gr"
	cart := &fakeCart{
		items: []LineItem{
			{ProductID: "p1", Type: TypeSimple, Weight: 1200, Qty: 1},
		},
		products: map[string]Product{
			"p1": {ID: "p1", SKU: "SKU-1", Type: TypeSimple, FinalPrice: 10},
		},
	}
	svc := newTestService(cart, &fakeClient{}, cfg)

	built, err := svc.buildPayload(context.Background(), quoteRequestFixture(), ResolveSettings(cfg))
	require.NoError(t, err)
	require.Equal(t, 1.2, built.payload.Products[0].Weight)
}

func TestBuildPayloadSkipsMissingProducts(t *testing.T) {
	cart := simpleCart()
	cart.items = append(cart.items, LineItem{ProductID: "gone", Type: TypeSimple, Qty: 1})
	svc := newTestService(cart, &fakeClient{}, baseConfig())

	built, err := svc.buildPayload(context.Background(), quoteRequestFixture(), ResolveSettings(baseConfig()))
	require.NoError(t, err)
	require.Len(t, built.payload.Products, 1)
	require.Equal(t, "SKU-1", built.payload.Products[0].SKU)
}

func TestBuildPayloadCategoryAttributePreferred(t *testing.T) {
	cfg := baseConfig()
	cfg["use_category_attribute"] = "shipping_category"
	cart := simpleCart()
	cart.products["p1"].Attributes["shipping_category"] = "fragile"
	svc := newTestService(cart, &fakeClient{}, cfg)

	built, err := svc.buildPayload(context.Background(), quoteRequestFixture(), ResolveSettings(cfg))
	require.NoError(t, err)
	require.Equal(t, [][]string{{"fragile"}}, built.categories)
}

func TestBuildPayloadRequestMetadata(t *testing.T) {
	svc := newTestService(simpleCart(), &fakeClient{}, baseConfig())

	req := quoteRequestFixture()
	req.OriginZip = "01310-100"
	req.SellerID = "seller-9"
	req.AdditionalInformation = "loja sp"
	built, err := svc.buildPayload(context.Background(), req, ResolveSettings(baseConfig()))
	require.NoError(t, err)

	require.Equal(t, "intelipost", built.payload.Carrier)
	require.Equal(t, "01310100", built.payload.OriginZipCode)
	require.Equal(t, "04538132", built.payload.DestinationZipCode)
	require.Equal(t, "seller-9", built.payload.SellerID)
	require.Equal(t, "loja sp", built.payload.AdditionalInformation)
	require.Equal(t, "cart_index_index", built.payload.Identification)
}
