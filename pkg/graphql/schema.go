// Package graphql exposes a frozen model through a read-only GraphQL schema.
package graphql

import (
	"errors"
	"fmt"
	"sort"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-bondgraph/pkg/bondgraph"
)

// ErrNotFrozen is returned when a schema is requested for a model that can
// still change.
var ErrNotFrozen = errors.New("model must be frozen before it can be queried")

// property is one entry of a node's property bag.
type property struct {
	key, value string
}

// GenerateSchema builds the query schema of a frozen model.
//
// Query fields:
//
//	model  { uri name disconnected nodeCount bondCount }
//	nodes  [Node]
//	node(uri: String!) Node
//	bonds  [Bond]
//
// node accepts a full URI, a CURIE or a display id.
func GenerateSchema(model *bondgraph.Model) (graphql.Schema, error) {
	if model == nil {
		return graphql.Schema{}, errors.New("model is nil")
	}
	if !model.Frozen() {
		return graphql.Schema{}, bondgraph.NewError("generate_schema").Model(model.URI()).Cause(ErrNotFrozen).Err()
	}

	nodeType := createNodeType(model)

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"model": &graphql.Field{
				Type: createModelType(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return model, nil
				},
			},
			"nodes": &graphql.Field{
				Type: graphql.NewList(nodeType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return model.Nodes(), nil
				},
			},
			"node": &graphql.Field{
				Type: nodeType,
				Args: graphql.FieldConfigArgument{
					"uri": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.String),
					},
				},
				Resolve: createNodeResolver(model),
			},
			"bonds": &graphql.Field{
				Type: graphql.NewList(createBondType(model)),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return model.Bonds(), nil
				},
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}
	return schema, nil
}

func createModelType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Model",
		Fields: graphql.Fields{
			"uri": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*bondgraph.Model).URI(), nil
				},
			},
			"name": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*bondgraph.Model).Name(), nil
				},
			},
			"disconnected": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*bondgraph.Model).Disconnected(), nil
				},
			},
			"nodeCount": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*bondgraph.Model).NodeCount(), nil
				},
			},
			"bondCount": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*bondgraph.Model).BondCount(), nil
				},
			},
		},
	})
}

// nodeField resolves a field of a *bondgraph.Node source.
func nodeField(typ graphql.Output, get func(*bondgraph.Node) interface{}) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if n, ok := p.Source.(*bondgraph.Node); ok {
				return get(n), nil
			}
			return nil, nil
		},
	}
}

func createNodeType(model *bondgraph.Model) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Node",
		Fields: graphql.Fields{
			"uri": nodeField(graphql.NewNonNull(graphql.String), func(n *bondgraph.Node) interface{} {
				return n.URI()
			}),
			"id": nodeField(graphql.NewNonNull(graphql.ID), func(n *bondgraph.Node) interface{} {
				return model.DisplayID(n.URI())
			}),
			"type": nodeField(graphql.String, func(n *bondgraph.Node) interface{} {
				return model.DisplayID(n.Type())
			}),
			"declaredType": nodeField(graphql.String, func(n *bondgraph.Node) interface{} {
				return model.DisplayID(n.DeclaredType())
			}),
			"units": nodeField(graphql.String, func(n *bondgraph.Node) interface{} {
				return n.Units().String()
			}),
			"name": nodeField(graphql.String, func(n *bondgraph.Node) interface{} {
				return n.Name()
			}),
			"label": nodeField(graphql.String, func(n *bondgraph.Node) interface{} {
				return n.Label()
			}),
			"delta": nodeField(graphql.String, func(n *bondgraph.Node) interface{} {
				return n.Delta()
			}),
			"value": nodeField(graphql.Float, func(n *bondgraph.Node) interface{} {
				if v, ok := n.Value(); ok {
					return v
				}
				return nil
			}),
			"equations": nodeField(graphql.NewList(graphql.String), func(n *bondgraph.Node) interface{} {
				return n.Equations()
			}),
			"properties": nodeField(graphql.NewList(propertyType), func(n *bondgraph.Node) interface{} {
				props := n.Properties()
				out := make([]property, 0, len(props))
				for k, v := range props {
					out = append(out, property{key: k, value: v})
				}
				sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
				return out
			}),
			"quantityValues": nodeField(graphql.NewList(quantityValueType), func(n *bondgraph.Node) interface{} {
				return n.QuantityValues()
			}),
		},
	})
}

var propertyType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Property",
	Fields: graphql.Fields{
		"key": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(property).key, nil
			},
		},
		"value": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(property).value, nil
			},
		},
	},
})

var quantityValueType = graphql.NewObject(graphql.ObjectConfig{
	Name: "QuantityValue",
	Fields: graphql.Fields{
		"quantity": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(bondgraph.QuantityValue).Quantity.URI(), nil
			},
		},
		"name": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(bondgraph.QuantityValue).Name, nil
			},
		},
		"value": &graphql.Field{
			Type: graphql.Float,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(bondgraph.QuantityValue).Value, nil
			},
		},
		"units": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(bondgraph.QuantityValue).Quantity.Units().String(), nil
			},
		},
	},
})

func createBondType(model *bondgraph.Model) *graphql.Object {
	bondField := func(get func(*bondgraph.Bond) string) *graphql.Field {
		return &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if b, ok := p.Source.(*bondgraph.Bond); ok {
					return get(b), nil
				}
				return nil, nil
			},
		}
	}
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Bond",
		Fields: graphql.Fields{
			"uri":    bondField(func(b *bondgraph.Bond) string { return b.URI() }),
			"id":     bondField(func(b *bondgraph.Bond) string { return model.DisplayID(b.URI()) }),
			"source": bondField(func(b *bondgraph.Bond) string { return b.Source().URI() }),
			"target": bondField(func(b *bondgraph.Bond) string { return b.Target().URI() }),
		},
	})
}

// createNodeResolver looks the uri argument up as given, then as a CURIE,
// then as a local name in the model's namespace.
func createNodeResolver(model *bondgraph.Model) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		term, ok := p.Args["uri"].(string)
		if !ok {
			return nil, fmt.Errorf("uri argument is required")
		}
		if n := model.GetNode(term); n != nil {
			return n, nil
		}
		if ns := model.Namespaces(); ns != nil {
			if n := model.GetNode(ns.URI(term)); n != nil {
				return n, nil
			}
		}
		if n := model.GetNode(model.Namespace() + term); n != nil {
			return n, nil
		}
		return nil, nil
	}
}
