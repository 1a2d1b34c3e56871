package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/Carmen-Shannon/oxy-assets/common"
	"github.com/Carmen-Shannon/oxy-assets/engine/model"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct {
	fetcher *fetcher
}

// gltfImporter defines the interface for orchestrating a full glTF/GLB import.
// It combines fetching, parsing and extraction to produce an ImportedAsset plus the
// document's extras.
type gltfImporter interface {
	// Import fetches a glTF/GLB document and extracts the node hierarchy, skins and animations.
	//
	// Parameters:
	//   - ctx: context for the fetch
	//   - location: the file path or URL of the glTF or GLB document
	//
	// Returns:
	//   - *model.ImportedAsset: the imported asset
	//   - map[string]any: the decoded asset.extras object, or nil if the document has none
	//   - error: error if import fails
	Import(ctx context.Context, location string) (*model.ImportedAsset, map[string]any, error)

	// ImportBytes parses an in-memory glTF JSON or GLB document.
	// External buffer URIs are resolved relative to location.
	//
	// Parameters:
	//   - ctx: context for fetching external buffers
	//   - location: the document location, used for naming and relative buffer URIs
	//   - data: the document bytes
	//   - isGLB: true if data is known to be GLB
	//
	// Returns:
	//   - *model.ImportedAsset: the imported asset
	//   - map[string]any: the decoded asset.extras object, or nil if the document has none
	//   - error: error if import fails
	ImportBytes(ctx context.Context, location string, data []byte, isGLB bool) (*model.ImportedAsset, map[string]any, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new glTF importer.
//
// Parameters:
//   - f: the fetcher used for documents and external buffers
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter(f *fetcher) gltfImporter {
	return &gltfImporterImpl{fetcher: f}
}

func (imp *gltfImporterImpl) Import(ctx context.Context, location string) (*model.ImportedAsset, map[string]any, error) {
	data, err := imp.fetcher.fetch(ctx, location)
	if err != nil {
		return nil, nil, err
	}
	isGLB := strings.EqualFold(path.Ext(location), ".glb")
	return imp.ImportBytes(ctx, location, data, isGLB)
}

func (imp *gltfImporterImpl) ImportBytes(ctx context.Context, location string, data []byte, isGLB bool) (*model.ImportedAsset, map[string]any, error) {
	parser := newGLTFParser(imp.fetcher.relativeTo(location))
	if err := parser.Parse(ctx, data, isGLB); err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", location, err)
	}
	return imp.importFromParser(parser, location)
}

// importFromParser performs a full import from a parser that has already loaded a document.
//
// Parameters:
//   - parser: the glTF parser that has already loaded a document
//   - fallbackPath: the document location, used as a fallback for asset naming
func (imp *gltfImporterImpl) importFromParser(parser gltfParser, fallbackPath string) (*model.ImportedAsset, map[string]any, error) {
	doc := parser.Document()
	if doc == nil {
		return nil, nil, errNoDocument
	}

	nodes := make([]model.ImportedNode, len(doc.Nodes))
	for i, n := range doc.Nodes {
		bounds, err := gltfNodeBounds(parser, doc, n)
		if err != nil {
			return nil, nil, fmt.Errorf("node %d bounds: %w", i, err)
		}

		scale := common.UnitScale
		if n.Scale != nil {
			scale = *n.Scale
		}

		nodes[i] = model.ImportedNode{
			Name:     gltfNodeName(doc, i),
			Scale:    scale,
			Bounds:   bounds,
			Children: append([]int(nil), n.Children...),
		}
	}

	skins := make([]model.ImportedSkin, len(doc.Skins))
	for i, s := range doc.Skins {
		joints := make([]string, len(s.Joints))
		for j, nodeIdx := range s.Joints {
			if nodeIdx < 0 || nodeIdx >= len(doc.Nodes) {
				return nil, nil, fmt.Errorf("skin %d joint %d references node %d out of range", i, j, nodeIdx)
			}
			joints[j] = gltfNodeName(doc, nodeIdx)
		}
		skins[i] = model.ImportedSkin{
			Name:   common.Coalesce(s.Name, fmt.Sprintf("skin_%d", i)),
			Joints: joints,
		}
	}

	animations := make([]model.ImportedAnimation, len(doc.Animations))
	for i, a := range doc.Animations {
		duration, err := gltfAnimationDuration(parser, doc, a)
		if err != nil {
			return nil, nil, fmt.Errorf("animation %d: %w", i, err)
		}
		animations[i] = model.ImportedAnimation{
			Name:     common.Coalesce(a.Name, fmt.Sprintf("animation_%d", i)),
			Duration: duration,
		}
	}

	extras, err := gltfDecodeExtras(doc.Asset.Extras)
	if err != nil {
		return nil, nil, err
	}

	return &model.ImportedAsset{
		Name:       gltfExtractAssetName(doc, fallbackPath),
		Nodes:      nodes,
		RootNodes:  gltfRootNodes(doc),
		Skins:      skins,
		Animations: animations,
	}, extras, nil
}

// --- Helper Functions ---

// gltfNodeName returns the node's declared name or a positional fallback.
func gltfNodeName(doc *gltfDocument, index int) string {
	return common.Coalesce(doc.Nodes[index].Name, fmt.Sprintf("node_%d", index))
}

// gltfNodeBounds unions the POSITION bounds of every primitive of the node's mesh.
// The accessor's declared min/max is used when present, otherwise the positions are scanned.
func gltfNodeBounds(parser gltfParser, doc *gltfDocument, n gltfNode) (common.BoundingBox, error) {
	var bounds common.BoundingBox
	if n.Mesh == nil {
		return bounds, nil
	}
	if *n.Mesh < 0 || *n.Mesh >= len(doc.Meshes) {
		return bounds, fmt.Errorf("mesh index %d out of range", *n.Mesh)
	}

	for _, prim := range doc.Meshes[*n.Mesh].Primitives {
		accIdx, ok := prim.Attributes["POSITION"]
		if !ok {
			continue
		}
		if accIdx < 0 || accIdx >= len(doc.Accessors) {
			return bounds, fmt.Errorf("accessor index %d out of range", accIdx)
		}

		acc := doc.Accessors[accIdx]
		if len(acc.Min) == 3 && len(acc.Max) == 3 {
			bounds = bounds.Union(common.NewBoundingBox(acc.Min, acc.Max))
			continue
		}

		positions, err := parser.ReadVec3Accessor(accIdx)
		if err != nil {
			return bounds, err
		}
		for _, p := range positions {
			bounds = bounds.Union(common.NewBoundingBox(p[:], p[:]))
		}
	}
	return bounds, nil
}

// gltfAnimationDuration returns the latest keyframe time across all samplers of an animation.
func gltfAnimationDuration(parser gltfParser, doc *gltfDocument, a gltfAnimation) (float32, error) {
	var duration float32
	for _, s := range a.Samplers {
		if s.Input < 0 || s.Input >= len(doc.Accessors) {
			return 0, fmt.Errorf("sampler input accessor %d out of range", s.Input)
		}

		if acc := doc.Accessors[s.Input]; len(acc.Max) == 1 {
			duration = max(duration, acc.Max[0])
			continue
		}

		times, err := parser.ReadScalarAccessor(s.Input)
		if err != nil {
			return 0, err
		}
		for _, t := range times {
			duration = max(duration, t)
		}
	}
	return duration, nil
}

// gltfRootNodes returns the root nodes of the default scene. Documents without scenes fall
// back to every node that is not another node's child.
func gltfRootNodes(doc *gltfDocument) []int {
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			idx = *doc.Scene
		}
		return append([]int(nil), doc.Scenes[idx].Nodes...)
	}

	isChild := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			isChild[c] = true
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !isChild[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// gltfDecodeExtras decodes asset.extras. A non-object value is kept under the "extras" key.
func gltfDecodeExtras(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("failed to decode asset extras: %w", err)
	}
	if obj, ok := value.(map[string]any); ok {
		return obj, nil
	}
	return map[string]any{"extras": value}, nil
}

// gltfExtractAssetName derives an asset name from the default scene or the document location.
func gltfExtractAssetName(doc *gltfDocument, fallbackPath string) string {
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		if name := doc.Scenes[*doc.Scene].Name; name != "" {
			return name
		}
	}

	if fallbackPath != "" {
		return path.Base(fallbackPath)
	}

	return "unnamed_asset"
}
