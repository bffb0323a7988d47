package likelihood

import (
	"transientfit/domain/model"
	"transientfit/domain/params"
	"transientfit/internal/errors"
)

// residualComputer evaluates the physical model at the observation times and
// forms the residual observed - predicted. The model is a pure function; any
// error it raises is wrapped as a MODEL_EVAL_ERROR for the evaluator to
// absorb into a rejecting log-likelihood.
type residualComputer struct {
	x, y   []float64
	model  model.Model
	kwargs model.Kwargs
}

func newResidualComputer(x, y []float64, m model.Model, kwargs model.Kwargs) residualComputer {
	return residualComputer{x: x, y: y, model: m, kwargs: kwargs}
}

// predictAt evaluates the model at arbitrary positions with the given kwargs.
func (rc residualComputer) predictAt(x []float64, p params.Vector, kwargs model.Kwargs) ([]float64, error) {
	predicted, err := rc.model.Eval(x, p, kwargs)
	if err != nil {
		return nil, errors.ModelEvaluation(rc.model.Name, err)
	}
	if len(predicted) != len(x) {
		return nil, errors.ModelEvaluation(rc.model.Name,
			errors.InvalidInput("model output length does not match input length"))
	}
	return predicted, nil
}

// predict evaluates the model at the observation times.
func (rc residualComputer) predict(p params.Vector) ([]float64, error) {
	return rc.predictAt(rc.x, p, rc.kwargs)
}

// residual returns observed - predicted.
func (rc residualComputer) residual(p params.Vector) ([]float64, error) {
	predicted, err := rc.predict(p)
	if err != nil {
		return nil, err
	}
	res := make([]float64, len(rc.y))
	for i := range rc.y {
		res[i] = rc.y[i] - predicted[i]
	}
	return res, nil
}
