package nlr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func twoLayerReLUNet() *NLR {
	n := New(0, 2)
	n.AddLayer([][]float64{{1, -1}, {0, 1}}, []float64{0, 0}, 2, true)
	n.AddLayer([][]float64{{1, 1}}, []float64{0}, 4, false)
	return n
}

func TestEvaluateRunsForwardPass(t *testing.T) {
	n := twoLayerReLUNet()
	out := map[int]float64{}
	n.Evaluate([]float64{3, 5}, out)
	assert.Equal(t, 0.0, out[2]) // relu(3-5)=relu(-2)=0
	assert.Equal(t, 5.0, out[3]) // relu(0+5)=5
	assert.Equal(t, 5.0, out[4]) // 0+5
}

func TestGetConstraintsInTopologicalOrderOnlyIncludesReLULayers(t *testing.T) {
	n := twoLayerReLUNet()
	order := n.GetConstraintsInTopologicalOrder()
	assert.Equal(t, []int{2, 3}, order)
}

func TestSimulateEvaluatesEachVector(t *testing.T) {
	n := twoLayerReLUNet()
	results := n.Simulate([][]float64{{1, 1}, {-1, -1}})
	assert.Len(t, results, 2)
	assert.Equal(t, 0.0, results[1][2]) // relu(-1-(-1))=relu(0)=0
}

func TestIntervalBoundPropagationClipsReLULayer(t *testing.T) {
	n := twoLayerReLUNet()
	bounds := n.IntervalBoundPropagation(Bounds{0: {-1, 1}, 1: {-1, 1}})
	b2 := bounds[2]
	assert.Equal(t, 0.0, b2[0]) // ReLU clip floors the lower bound at zero
	assert.Equal(t, 2.0, b2[1])
}
