package metrics

const namespace = "stockroom"
