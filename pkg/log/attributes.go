package log

// 構造化ログの共通キー。"分類.名前" の形で揃えて、どのステージのログも同じキーで絞り込めるようにします。

// 操作・コンポーネント
const (
	ModelNameKey   = "model.name" // "fasttree", "minmax", "concat" など
	EstimatorIDKey = "estimator.id"
	OperationKey   = "ml.operation"
	ComponentKey   = "ml.component"
	PhaseKey       = "ml.phase" // workflow のステージ名
)

// データ
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	PathKey     = "data.path"
	DataSizeKey = "data.size_bytes"
)

// 学習・評価
const (
	DurationMsKey   = "perf.duration_ms"
	LossKey         = "metrics.loss"
	RMSEKey         = "metrics.rmse"
	MAEKey          = "metrics.mae"
	R2ScoreKey      = "metrics.r2_score"
	IterationKey    = "training.iteration"
	LearningRateKey = "hyperparams.learning_rate"
	RandomSeedKey   = "config.random_seed"
)

// 予測
const (
	PredsKey    = "preds.count"
	RecordIDKey = "preds.record_id"
)

// StacktraceKey は Error に渡された error のスタック。
const StacktraceKey = "error.stacktrace"

// OperationKey の値
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationScore   = "score"
	OperationSave    = "save"
	OperationLoad    = "load"
)
