package smcore

import (
	"context"
	"time"

	"github.com/aws/sagemaker-core-sub001/schema"
)

// The fixtures below mirror what the synthesizer emits for a small training
// job service: typed structs whose fields line up with the shape graph, a
// constructor registry, and a Refresh method that round-trips through the
// codec.

func testGraph() *schema.Graph {
	return schema.NewGraph([]*schema.Shape{
		{Name: "String", Kind: schema.KindString},
		{Name: "Integer", Kind: schema.KindInteger},
		{Name: "Double", Kind: schema.KindDouble},
		{Name: "Timestamp", Kind: schema.KindTimestamp},
		{Name: "TrainingJobStatus", Kind: schema.KindString,
			Enum: []string{"InProgress", "Completed", "Failed", "Stopping", "Stopped"}},
		{Name: "ResourceConfig", Kind: schema.KindStructure,
			Members: []schema.Member{
				{Name: "InstanceType", Target: "String"},
				{Name: "InstanceCount", Target: "Integer"},
				{Name: "VolumeSizeInGB", Target: "Integer"},
			},
			Required: []string{"InstanceType", "InstanceCount"}},
		{Name: "MetricData", Kind: schema.KindStructure,
			Members: []schema.Member{
				{Name: "Name", Target: "String"},
				{Name: "Value", Target: "Double"},
			}},
		{Name: "MetricList", Kind: schema.KindList, MemberTarget: "MetricData"},
		{Name: "StringList", Kind: schema.KindList, MemberTarget: "String"},
		{Name: "ListOfLists", Kind: schema.KindList, MemberTarget: "StringList"},
		{Name: "TagMap", Kind: schema.KindMap, KeyTarget: "String", ValueTarget: "String"},
		{Name: "MetricMap", Kind: schema.KindMap, KeyTarget: "String", ValueTarget: "MetricData"},
		{Name: "BadKeyMap", Kind: schema.KindMap, KeyTarget: "Integer", ValueTarget: "String"},
		{Name: "DescribeTrainingJobResponse", Kind: schema.KindStructure,
			Members: []schema.Member{
				{Name: "TrainingJobName", Target: "String"},
				{Name: "TrainingJobArn", Target: "String"},
				{Name: "TrainingJobStatus", Target: "TrainingJobStatus"},
				{Name: "FailureReason", Target: "String"},
				{Name: "ResourceConfig", Target: "ResourceConfig"},
				{Name: "Metrics", Target: "MetricList"},
				{Name: "Tags", Target: "TagMap"},
				{Name: "NamedMetrics", Target: "MetricMap"},
				{Name: "CreationTime", Target: "Timestamp"},
				{Name: "BadList", Target: "ListOfLists"},
				{Name: "BadMap", Target: "BadKeyMap"},
			},
			Required: []string{"TrainingJobName"}},
		{Name: "TrainingJobSummary", Kind: schema.KindStructure,
			Members: []schema.Member{
				{Name: "TrainingJobName", Target: "String"},
				{Name: "CreationTime", Target: "Timestamp"},
			},
			Required: []string{"TrainingJobName"}},
		{Name: "TrainingJobSummaryList", Kind: schema.KindList, MemberTarget: "TrainingJobSummary"},
		{Name: "ListTrainingJobsResponse", Kind: schema.KindStructure,
			Members: []schema.Member{
				{Name: "TrainingJobSummaries", Target: "TrainingJobSummaryList"},
				{Name: "NextToken", Target: "String"},
			}},
	})
}

type resourceConfig struct {
	InstanceType   *string
	InstanceCount  *int64
	VolumeSizeInGB *int64
}

type metricData struct {
	Name  *string
	Value *float64
}

type trainingJob struct {
	TrainingJobName   string
	TrainingJobArn    *string
	TrainingJobStatus *string
	FailureReason     *string
	ResourceConfig    *resourceConfig
	Metrics           []*metricData
	Tags              map[string]string
	NamedMetrics      map[string]*metricData
	CreationTime      *time.Time
	BadList           [][]string
	BadMap            map[string]string

	client ClientHandle
	codec  *Codec
}

func (t *trainingJob) Refresh(ctx context.Context) error {
	resp, err := t.client.Call(ctx, "DescribeTrainingJob", map[string]any{
		"TrainingJobName": t.TrainingJobName,
	})
	if err != nil {
		return err
	}
	_, err = t.codec.Transform(resp, "DescribeTrainingJobResponse", t)
	return err
}

func testRegistry() *Registry {
	r := NewRegistry()
	r.Register("DescribeTrainingJobResponse", func() any { return &trainingJob{} })
	r.Register("ResourceConfig", func() any { return &resourceConfig{} })
	r.Register("MetricData", func() any { return &metricData{} })
	return r
}

func testCodec() *Codec {
	return NewCodec(testGraph(), testRegistry())
}

func ptr[T any](v T) *T { return &v }
