package stream

// calculateBatchSize grows the batch size with the batch number: a sizeable
// first batch so the first handful of elements isn't trivially small,
// ramping up over the next few batches, then settling at a cap that itself
// scales with the file's total job count so huge files don't explode into
// tens of thousands of tiny batches.
func calculateBatchSize(batchNumber, initialBatchSize, maxBatchSize, totalJobs int) int {
	adjustedMax := maxBatchSize
	switch {
	case totalJobs > 50_000:
		adjustedMax = min(maxBatchSize*20, 20_000)
	case totalJobs > 10_000:
		adjustedMax = min(maxBatchSize*10, 10_000)
	case totalJobs > 1_000:
		adjustedMax = min(maxBatchSize*5, 5_000)
	}

	switch {
	case batchNumber == 1:
		return max(initialBatchSize, 200)
	case batchNumber >= 2 && batchNumber <= 3:
		return min(initialBatchSize*2, adjustedMax)
	case batchNumber >= 4 && batchNumber <= 6:
		return (initialBatchSize + adjustedMax) / 2
	default:
		return adjustedMax
	}
}

// pipelineDepth returns how many batches may be in flight at once, scaled to
// the file's size: small files don't benefit from deep pipelining, and huge
// ones need it to keep workers fed.
func pipelineDepth(totalJobs int) int {
	switch {
	case totalJobs > 50_000:
		return 4
	case totalJobs > 10_000:
		return 3
	default:
		return 2
	}
}
