package models

import (
	"strings"

	"github.com/google/uuid"
)

// Graph node and edge kind tags.
const (
	GraphNodeService      = "service"
	GraphNodeDependency   = "dependency"
	GraphEdgeServiceUsage = "service_dependency"
)

// DependencyGraph is a derived, read-only projection of services and their
// dependency bindings. It is regenerated on every fetch and never persisted.
type DependencyGraph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// GraphNode is a service or dependency vertex.
type GraphNode struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Type        string            `json:"type"`
	ServiceType *ServiceType      `json:"serviceType,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// GraphEdge is a directed edge from a service to one of its dependencies.
// The edge list is flat and non-deduplicated: parallel bindings to the same
// dependency produce parallel edges.
type GraphEdge struct {
	FromNodeID uuid.UUID         `json:"fromNodeId"`
	ToNodeID   uuid.UUID         `json:"toNodeId"`
	Type       string            `json:"type"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// BuildDependencyGraph derives the graph projection from services and their
// dependency bindings. Every service gets a node; every dependency referenced
// by a binding gets a node, deduplicated by id via the embedded snapshot.
func BuildDependencyGraph(services []Service, bindings []ServiceDependency) DependencyGraph {
	graph := DependencyGraph{
		Nodes: make([]GraphNode, 0, len(services)),
		Edges: make([]GraphEdge, 0, len(bindings)),
	}

	for i := range services {
		svc := &services[i]
		serviceType := svc.ServiceType
		meta := map[string]string{"owner": svc.Owner}
		if svc.Description != nil {
			meta["description"] = *svc.Description
		}
		if len(svc.Tags) > 0 {
			meta["tags"] = strings.Join(svc.Tags, ",")
		}
		graph.Nodes = append(graph.Nodes, GraphNode{
			ID:          svc.ServiceID,
			Name:        svc.Name,
			Type:        GraphNodeService,
			ServiceType: &serviceType,
			Metadata:    meta,
		})
	}

	seen := make(map[uuid.UUID]bool)
	for i := range bindings {
		sd := &bindings[i]
		if !seen[sd.DependencyID] {
			seen[sd.DependencyID] = true
			graph.Nodes = append(graph.Nodes, GraphNode{
				ID:   sd.DependencyID,
				Name: sd.Dependency.Name,
				Type: GraphNodeDependency,
				Metadata: map[string]string{
					"dependencyType": string(sd.Dependency.DependencyType),
					"version":        sd.Dependency.Version,
				},
			})
		}
		edgeMeta := map[string]string{
			"dependencyType": string(sd.Dependency.DependencyType),
			"version":        sd.Dependency.Version,
		}
		if sd.EnvironmentCode != nil {
			edgeMeta["environmentCode"] = *sd.EnvironmentCode
		}
		graph.Edges = append(graph.Edges, GraphEdge{
			FromNodeID: sd.ServiceID,
			ToNodeID:   sd.DependencyID,
			Type:       GraphEdgeServiceUsage,
			Metadata:   edgeMeta,
		})
	}

	return graph
}
