package nodes_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravi-parthasarathy/scriptgraph/pkg/codegen"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/graph"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/nodes"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/scene"
)

func in(code string) *codegen.Descriptor {
	return &codegen.Descriptor{Type: codegen.Constant, Code: code}
}

// run generates one node of kind with props inside a graph of its own.
func run(t *testing.T, kind graph.NodeKind, props map[string]string, reg *scene.Registry, inputs ...*codegen.Descriptor) (*codegen.Descriptor, error) {
	t.Helper()
	g := graph.New("unit")
	n := &graph.Node{ID: "n", Kind: kind, Properties: props}
	require.NoError(t, g.AddNode(n))
	gen, err := nodes.Builtin().Lookup(kind)
	require.NoError(t, err)
	return gen(codegen.NewGenContext(g, n, reg), inputs)
}

func TestGenerators_Code(t *testing.T) {
	t.Parallel()
	tests := []struct {
		kind   graph.NodeKind
		props  map[string]string
		inputs []*codegen.Descriptor
		want   codegen.Descriptor
	}{
		{kind: "number", props: map[string]string{"value": "4.5"}, want: codegen.Descriptor{Type: codegen.Constant, Code: "4.5"}},
		{kind: "number", want: codegen.Descriptor{Type: codegen.Constant, Code: "0"}},
		{kind: "string", props: map[string]string{"value": `say "hi"`}, want: codegen.Descriptor{Type: codegen.Constant, Code: `"say \"hi\""`}},
		{kind: "boolean", props: map[string]string{"value": "true"}, want: codegen.Descriptor{Type: codegen.Constant, Code: "true"}},
		{
			kind:   "vector3",
			props:  map[string]string{"x": "1", "z": "3"},
			inputs: []*codegen.Descriptor{nil, in("h"), nil},
			want: codegen.Descriptor{
				Type:     codegen.Constant,
				Code:     "new Vector3(1, h, 3)",
				Requires: []codegen.Require{{Module: "@babylonjs/core", Classes: []string{"Vector3"}}},
			},
		},
		{kind: "add", inputs: []*codegen.Descriptor{in("a"), in("b")}, want: codegen.Descriptor{Type: codegen.Constant, Code: "(a + b)"}},
		{kind: "subtract", inputs: []*codegen.Descriptor{in("a"), in("b")}, want: codegen.Descriptor{Type: codegen.Constant, Code: "(a - b)"}},
		{kind: "multiply", inputs: []*codegen.Descriptor{in("a"), in("b")}, want: codegen.Descriptor{Type: codegen.Constant, Code: "(a * b)"}},
		{kind: "divide", inputs: []*codegen.Descriptor{in("a"), in("b")}, want: codegen.Descriptor{Type: codegen.Constant, Code: "(a / b)"}},
		{kind: "not", inputs: []*codegen.Descriptor{in("ok")}, want: codegen.Descriptor{Type: codegen.Constant, Code: "!(ok)"}},
		{kind: "and", inputs: []*codegen.Descriptor{in("a"), nil, in("c")}, want: codegen.Descriptor{Type: codegen.Constant, Code: "(a && c)"}},
		{kind: "or", inputs: []*codegen.Descriptor{in("a"), in("b")}, want: codegen.Descriptor{Type: codegen.Constant, Code: "(a || b)"}},
		{
			kind:   "equals",
			inputs: []*codegen.Descriptor{in("a"), in("b")},
			want: codegen.Descriptor{
				Type:        codegen.Condition,
				Code:        "if (a === b) {\n{{generated__equals__body}}\n}",
				OutputsCode: map[int]string{2: "(a === b)"},
			},
		},
		{
			kind:   "not_null",
			inputs: []*codegen.Descriptor{in("o")},
			want: codegen.Descriptor{
				Type:        codegen.Condition,
				Code:        "if (o !== null && o !== undefined) {\n{{generated__equals__body}}\n}",
				OutputsCode: map[int]string{2: "(o !== null && o !== undefined)", 3: "o"},
			},
		},
		{
			kind:   "is_true",
			inputs: []*codegen.Descriptor{in("v")},
			want: codegen.Descriptor{
				Type:        codegen.Condition,
				Code:        "if (v) {\n{{generated__equals__body}}\n}",
				OutputsCode: map[int]string{2: "(v)", 3: "v"},
			},
		},
		{kind: "start", want: codegen.Descriptor{Type: codegen.FunctionCallback, Code: "{{generated__body}}", ExecutionType: codegen.PhaseStart}},
		{kind: "update", want: codegen.Descriptor{Type: codegen.FunctionCallback, Code: "{{generated__body}}", ExecutionType: codegen.PhaseUpdate}},
		{
			kind:  "timeout",
			props: map[string]string{"delay": "250"},
			want:  codegen.Descriptor{Type: codegen.FunctionCallback, Code: "setTimeout(() => {\n{{generated__body}}\n}, 250);"},
		},
		{
			kind:   "get_property",
			props:  map[string]string{"path": "position.x"},
			inputs: []*codegen.Descriptor{in("this.box")},
			want:   codegen.Descriptor{Type: codegen.Constant, Code: "this.box.position.x"},
		},
		{
			kind:   "set_property",
			props:  map[string]string{"path": ".visible"},
			inputs: []*codegen.Descriptor{in("this.box"), in("false")},
			want:   codegen.Descriptor{Type: codegen.Function, Code: "this.box.visible = false;"},
		},
		{kind: "log", inputs: []*codegen.Descriptor{in(`"hi"`)}, want: codegen.Descriptor{Type: codegen.Function, Code: `console.log("hi" as any);`}},
		{
			kind: "camera",
			want: codegen.Descriptor{
				Type:     codegen.Variable,
				Variable: &codegen.VariableDecl{Name: "camera", Value: `this.scene.getCameraByName("camera") as Camera`},
				Requires: []codegen.Require{{Module: "@babylonjs/core", Classes: []string{"Camera"}}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			t.Parallel()
			got, err := run(t, tt.kind, tt.props, nil, tt.inputs...)
			require.NoError(t, err)
			if diff := cmp.Diff(&tt.want, got); diff != "" {
				t.Errorf("descriptor mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGenerators_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		kind    graph.NodeKind
		props   map[string]string
		inputs  []*codegen.Descriptor
		wantErr string
	}{
		{name: "bad number", kind: "number", props: map[string]string{"value": "ten"}, wantErr: `"ten" is not a number`},
		{name: "bad boolean", kind: "boolean", props: map[string]string{"value": "yes"}, wantErr: `"yes" is not a boolean`},
		{name: "add missing b", kind: "add", inputs: []*codegen.Descriptor{in("1"), nil}, wantErr: `add node needs input "b"`},
		{name: "and one input", kind: "and", inputs: []*codegen.Descriptor{in("a"), nil}, wantErr: "and node needs at least 2 elements to compare"},
		{name: "or no input", kind: "or", wantErr: "or node needs at least 2 elements to compare"},
		{name: "log no message", kind: "log", inputs: []*codegen.Descriptor{nil}, wantErr: `log node needs input "message"`},
		{name: "observable no name", kind: "observable", inputs: []*codegen.Descriptor{in("o")}, wantErr: "needs an observable name"},
		{name: "get_property no path", kind: "get_property", inputs: []*codegen.Descriptor{in("o")}, wantErr: "needs a property path"},
		{name: "timeout bad delay", kind: "timeout", props: map[string]string{"delay": "soon"}, wantErr: "is not a number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := run(t, tt.kind, tt.props, nil, tt.inputs...)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestEquals_ElseOnlyWhenConnected(t *testing.T) {
	t.Parallel()
	g := graph.New("eq")
	eq := &graph.Node{ID: "eq", Kind: "equals"}
	require.NoError(t, g.AddNode(eq))
	require.NoError(t, g.AddNode(&graph.Node{ID: "other", Kind: "log"}))
	g.Connect("eq", 1, "other", 0)

	gen, err := nodes.Builtin().Lookup("equals")
	require.NoError(t, err)
	d, err := gen(codegen.NewGenContext(g, eq, nil), []*codegen.Descriptor{in("1"), in("2")})
	require.NoError(t, err)
	assert.Equal(t, "if (1 === 2) {\n{{generated__equals__body}}\n} else {\n{{generated__not__equals__body}}\n}", d.Code)
}

func TestObservable_UniqueArgumentNames(t *testing.T) {
	t.Parallel()
	g := graph.New("obs")
	n := &graph.Node{ID: "o", Kind: "observable", Properties: map[string]string{"name": "onBeforeRenderObservable", "once": "true"}}
	require.NoError(t, g.AddNode(n))
	gen, err := nodes.Builtin().Lookup("observable")
	require.NoError(t, err)

	gc := codegen.NewGenContext(g, n, nil)
	first, err := gen(gc, []*codegen.Descriptor{in("this.box")})
	require.NoError(t, err)
	second, err := gen(gc, []*codegen.Descriptor{in("this.box")})
	require.NoError(t, err)

	assert.Equal(t, "this.box.onBeforeRenderObservable.addOnce((ev_0) => {\n{{generated__body}}\n});", first.Code)
	assert.Equal(t, codegen.PhaseStart, first.ExecutionType)
	assert.Equal(t, map[int]string{1: "this.box", 2: "ev_0"}, first.OutputsCode)
	assert.Equal(t, "ev_1", second.OutputsCode[2])
}

func TestTimeout_DelayInputWins(t *testing.T) {
	t.Parallel()
	d, err := run(t, "timeout", map[string]string{"delay": "100"}, nil, in("this.delay"))
	require.NoError(t, err)
	assert.Contains(t, d.Code, "}, this.delay);")
}

func TestMesh_SceneRegistry(t *testing.T) {
	t.Parallel()
	reg := scene.NewRegistry()
	require.NoError(t, reg.Add(scene.Meshes, scene.Object{Name: "ground", Class: "GroundMesh"}))

	d, err := run(t, "mesh", map[string]string{"name": "ground"}, reg)
	require.NoError(t, err)
	assert.Equal(t, &codegen.VariableDecl{Name: "ground", Value: `this.scene.getMeshByName("ground") as GroundMesh`}, d.Variable)
	assert.Equal(t, []codegen.Require{{Module: "@babylonjs/core", Classes: []string{"GroundMesh"}}}, d.Requires)

	_, err = run(t, "mesh", map[string]string{"name": "sky"}, reg)
	assert.ErrorContains(t, err, `mesh "sky" is not in the scene (known: ground)`)

	// Categories the project does not describe are not checked.
	_, err = run(t, "camera", map[string]string{"name": "anything"}, reg)
	assert.NoError(t, err)
}

func TestSceneObjects_LightsAndSounds(t *testing.T) {
	t.Parallel()
	reg := scene.NewRegistry()
	require.NoError(t, reg.Add(scene.Lights, scene.Object{Name: "sun", Class: "DirectionalLight"}))
	require.NoError(t, reg.Add(scene.Sounds, scene.Object{Name: "music"}))
	require.NoError(t, reg.Add(scene.Sounds, scene.Object{Name: "click"}))

	tests := []struct {
		kind    graph.NodeKind
		name    string
		want    *codegen.VariableDecl
		class   string
		wantErr string
	}{
		{
			kind:  "light",
			name:  "sun",
			want:  &codegen.VariableDecl{Name: "sun", Value: `this.scene.getLightByName("sun") as DirectionalLight`},
			class: "DirectionalLight",
		},
		{
			kind:  "sound",
			name:  "music",
			want:  &codegen.VariableDecl{Name: "music", Value: `this.scene.getSoundByName("music") as Sound`},
			class: "Sound",
		},
		{kind: "light", name: "moon", wantErr: `light "moon" is not in the scene (known: sun)`},
		{kind: "sound", name: "bang", wantErr: `sound "bang" is not in the scene (known: click, music)`},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.name, func(t *testing.T) {
			t.Parallel()
			d, err := run(t, tt.kind, map[string]string{"name": tt.name}, reg)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Variable)
			assert.Equal(t, []codegen.Require{{Module: "@babylonjs/core", Classes: []string{tt.class}}}, d.Requires)
		})
	}
}

func TestMesh_VariableNameIsIdentifier(t *testing.T) {
	t.Parallel()
	d, err := run(t, "mesh", map[string]string{"name": "3d box-1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "_3d_box_1", d.Variable.Name)

	d, err = run(t, "mesh", map[string]string{"name": "box", "var": "player"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "player", d.Variable.Name)
}
