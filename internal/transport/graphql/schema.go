// Package graphql exposes the API schema over HTTP. Resolvers are thin:
// they bind and validate inputs, delegate to the services and translate
// domain errors into coded API errors.
package graphql

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/graphql-go/graphql"

	"github.com/jpalomar/vendorhub/internal/service"
	"github.com/jpalomar/vendorhub/internal/store"
)

var validate = validator.New()

// Services bundles the business services the resolvers delegate to.
type Services struct {
	Vendors  *service.VendorService
	Products *service.ProductService
	Clients  *service.ClientService
	Orders   *service.OrderService
	Reports  *service.ReportService
}

// NewSchema builds the executable schema over the given services.
func NewSchema(s *Services) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"getVendor": &graphql.Field{
				Type: vendorType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					dto, err := s.Vendors.Profile(p.Context)
					if err != nil {
						return nil, mapError(err)
					}
					return dto, nil
				},
			},
			"getTopVendors": &graphql.Field{
				Type: graphql.NewList(topVendorType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					dtos, err := s.Reports.TopVendors(p.Context)
					if err != nil {
						return nil, mapError(err)
					}
					return dtos, nil
				},
			},
			"getProducts": &graphql.Field{
				Type: graphql.NewList(productType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					dtos, err := s.Products.FindAll(p.Context)
					if err != nil {
						return nil, mapError(err)
					}
					return dtos, nil
				},
			},
			"getProduct": &graphql.Field{
				Type: productType,
				Args: idArg(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := uuidArg(p, "id")
					if err != nil {
						return nil, err
					}
					dto, err := s.Products.FindByID(p.Context, id)
					if err != nil {
						return nil, mapError(err)
					}
					return dto, nil
				},
			},
			"searchProduct": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"text": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					text, _ := p.Args["text"].(string)
					dtos, err := s.Products.Search(p.Context, text)
					if err != nil {
						return nil, mapError(err)
					}
					return dtos, nil
				},
			},
			"getAllClients": &graphql.Field{
				Type: graphql.NewList(clientType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					dtos, err := s.Clients.FindAll(p.Context)
					if err != nil {
						return nil, mapError(err)
					}
					return dtos, nil
				},
			},
			"getClients": &graphql.Field{
				Type: graphql.NewList(clientType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					dtos, err := s.Clients.FindMine(p.Context)
					if err != nil {
						return nil, mapError(err)
					}
					return dtos, nil
				},
			},
			"getClient": &graphql.Field{
				Type: clientType,
				Args: idArg(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := uuidArg(p, "id")
					if err != nil {
						return nil, err
					}
					dto, err := s.Clients.FindByID(p.Context, id)
					if err != nil {
						return nil, mapError(err)
					}
					return dto, nil
				},
			},
			"getTopClients": &graphql.Field{
				Type: graphql.NewList(topClientType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					dtos, err := s.Reports.TopClients(p.Context)
					if err != nil {
						return nil, mapError(err)
					}
					return dtos, nil
				},
			},
			"getAllOrders": &graphql.Field{
				Type: graphql.NewList(orderType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					dtos, err := s.Orders.FindAll(p.Context)
					if err != nil {
						return nil, mapError(err)
					}
					return dtos, nil
				},
			},
			"getOrders": &graphql.Field{
				Type: graphql.NewList(orderType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					dtos, err := s.Orders.FindMine(p.Context)
					if err != nil {
						return nil, mapError(err)
					}
					return dtos, nil
				},
			},
			"getStateOrders": &graphql.Field{
				Type: graphql.NewList(orderType),
				Args: graphql.FieldConfigArgument{
					"state": &graphql.ArgumentConfig{Type: graphql.NewNonNull(orderStateEnum)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					state, ok := p.Args["state"].(store.OrderState)
					if !ok || !state.Valid() {
						return nil, badInput("invalid state")
					}
					dtos, err := s.Orders.FindMineByState(p.Context, state)
					if err != nil {
						return nil, mapError(err)
					}
					return dtos, nil
				},
			},
			"getOrder": &graphql.Field{
				Type: orderType,
				Args: idArg(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := uuidArg(p, "id")
					if err != nil {
						return nil, err
					}
					dto, err := s.Orders.FindByID(p.Context, id)
					if err != nil {
						return nil, mapError(err)
					}
					return dto, nil
				},
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"addVendor": &graphql.Field{
				Type: vendorType,
				Args: inputArg(vendorInput),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var dto service.VendorCreateDto
					if err := bindInput(p, &dto); err != nil {
						return nil, err
					}
					created, err := s.Vendors.Register(p.Context, dto)
					if err != nil {
						return nil, mapError(err)
					}
					return created, nil
				},
			},
			"authVendor": &graphql.Field{
				Type: tokenType,
				Args: inputArg(authInput),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var dto service.AuthDto
					if err := bindInput(p, &dto); err != nil {
						return nil, err
					}
					token, err := s.Vendors.Authenticate(p.Context, dto)
					if err != nil {
						return nil, mapError(err)
					}
					return token, nil
				},
			},
			"addProduct": &graphql.Field{
				Type: productType,
				Args: inputArg(productInput),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var dto service.ProductInput
					if err := bindInput(p, &dto); err != nil {
						return nil, err
					}
					created, err := s.Products.Create(p.Context, dto)
					if err != nil {
						return nil, mapError(err)
					}
					return created, nil
				},
			},
			"updateProduct": &graphql.Field{
				Type: productType,
				Args: idAndInputArg(productInput),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := uuidArg(p, "id")
					if err != nil {
						return nil, err
					}
					var dto service.ProductInput
					if err := bindInput(p, &dto); err != nil {
						return nil, err
					}
					updated, err := s.Products.Update(p.Context, id, dto)
					if err != nil {
						return nil, mapError(err)
					}
					return updated, nil
				},
			},
			"deleteProduct": &graphql.Field{
				Type: graphql.String,
				Args: idArg(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := uuidArg(p, "id")
					if err != nil {
						return nil, err
					}
					if err := s.Products.Delete(p.Context, id); err != nil {
						return nil, mapError(err)
					}
					return "product deleted", nil
				},
			},
			"addClient": &graphql.Field{
				Type: clientType,
				Args: inputArg(clientInput),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var dto service.ClientInput
					if err := bindInput(p, &dto); err != nil {
						return nil, err
					}
					created, err := s.Clients.Create(p.Context, dto)
					if err != nil {
						return nil, mapError(err)
					}
					return created, nil
				},
			},
			"updateClient": &graphql.Field{
				Type: clientType,
				Args: idAndInputArg(clientInput),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := uuidArg(p, "id")
					if err != nil {
						return nil, err
					}
					var dto service.ClientInput
					if err := bindInput(p, &dto); err != nil {
						return nil, err
					}
					updated, err := s.Clients.Update(p.Context, id, dto)
					if err != nil {
						return nil, mapError(err)
					}
					return updated, nil
				},
			},
			"deleteClient": &graphql.Field{
				Type: graphql.String,
				Args: idArg(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := uuidArg(p, "id")
					if err != nil {
						return nil, err
					}
					if err := s.Clients.Delete(p.Context, id); err != nil {
						return nil, mapError(err)
					}
					return "client deleted", nil
				},
			},
			"addOrder": &graphql.Field{
				Type: orderType,
				Args: inputArg(orderInput),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var dto service.OrderCreateDto
					if err := bindInput(p, &dto); err != nil {
						return nil, err
					}
					created, err := s.Orders.Create(p.Context, dto)
					if err != nil {
						return nil, mapError(err)
					}
					return created, nil
				},
			},
			"updateOrder": &graphql.Field{
				Type: orderType,
				Args: idAndInputArg(orderInput),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := uuidArg(p, "id")
					if err != nil {
						return nil, err
					}
					var dto service.OrderUpdateDto
					if err := bindInput(p, &dto); err != nil {
						return nil, err
					}
					updated, err := s.Orders.Update(p.Context, id, dto)
					if err != nil {
						return nil, mapError(err)
					}
					return updated, nil
				},
			},
			"deleteOrder": &graphql.Field{
				Type: graphql.String,
				Args: idArg(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := uuidArg(p, "id")
					if err != nil {
						return nil, err
					}
					if err := s.Orders.Delete(p.Context, id); err != nil {
						return nil, mapError(err)
					}
					return "order deleted", nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}

func idArg() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
	}
}

func inputArg(t *graphql.InputObject) graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(t)},
	}
}

func idAndInputArg(t *graphql.InputObject) graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
		"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(t)},
	}
}

// uuidArg parses a required ID argument.
func uuidArg(p graphql.ResolveParams, name string) (uuid.UUID, error) {
	s, ok := p.Args[name].(string)
	if !ok {
		return uuid.Nil, badInput(fmt.Sprintf("%s is required", name))
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, badInput(fmt.Sprintf("invalid %s: %v", name, err))
	}
	return id, nil
}

// bindInput decodes the input argument into dst and validates it. The
// argument map round-trips through JSON so the DTO json tags define the
// binding, the same tags the response objects resolve by.
func bindInput(p graphql.ResolveParams, dst interface{}) error {
	raw, ok := p.Args["input"]
	if !ok {
		return badInput("input is required")
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return badInput(fmt.Sprintf("malformed input: %v", err))
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return badInput(fmt.Sprintf("malformed input: %v", err))
	}
	if err := validate.Struct(dst); err != nil {
		return mapError(err)
	}
	return nil
}
