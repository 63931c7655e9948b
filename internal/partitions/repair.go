package partitions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	athenatypes "github.com/aws/aws-sdk-go-v2/service/athena/types"
	"github.com/rs/zerolog"
)

type AthenaClient interface {
	StartQueryExecution(ctx context.Context, params *athena.StartQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecution(ctx context.Context, params *athena.GetQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error)
}

type Options struct {
	Database     string
	Table        string
	Workgroup    string
	Output       string // s3://bucket/prefix/
	MaxWait      time.Duration
	PollInterval time.Duration
}

type Result struct {
	Ok        bool   `json:"ok"`
	QueryID   string `json:"query_id,omitempty"`
	State     string `json:"state,omitempty"`
	Database  string `json:"database,omitempty"`
	Table     string `json:"table,omitempty"`
	Workgroup string `json:"workgroup,omitempty"`
	Output    string `json:"output,omitempty"`
}

func (o Options) validate() error {
	if o.Database == "" || o.Table == "" || o.Output == "" {
		return fmt.Errorf("missing env: ATHENA_DATABASE, ATHENA_TABLE, ATHENA_OUTPUT are required")
	}
	if !strings.HasPrefix(o.Output, "s3://") {
		return fmt.Errorf("ATHENA_OUTPUT must start with s3://")
	}
	return nil
}

// Repair runs MSCK REPAIR TABLE so new dt=/source= prefixes written by the
// block export become queryable, and waits for the query to finish.
func Repair(ctx context.Context, c AthenaClient, log zerolog.Logger, opt Options) (Result, error) {
	if err := opt.validate(); err != nil {
		return Result{Ok: false}, err
	}
	if opt.Workgroup == "" {
		opt.Workgroup = "primary"
	}
	if opt.MaxWait == 0 {
		opt.MaxWait = 60 * time.Second
	}
	if opt.PollInterval == 0 {
		opt.PollInterval = 2 * time.Second
	}

	startOut, err := c.StartQueryExecution(ctx, &athena.StartQueryExecutionInput{
		QueryString: aws.String(fmt.Sprintf("MSCK REPAIR TABLE %s;", opt.Table)),
		QueryExecutionContext: &athenatypes.QueryExecutionContext{
			Database: aws.String(opt.Database),
		},
		WorkGroup: aws.String(opt.Workgroup),
		ResultConfiguration: &athenatypes.ResultConfiguration{
			OutputLocation: aws.String(opt.Output),
		},
	})
	if err != nil {
		return Result{Ok: false}, fmt.Errorf("StartQueryExecution: %w", err)
	}

	qid := aws.ToString(startOut.QueryExecutionId)
	log.Info().Str("qid", qid).Str("db", opt.Database).Str("table", opt.Table).Str("wg", opt.Workgroup).Msg("repair started")

	deadline := time.Now().Add(opt.MaxWait)
	for time.Now().Before(deadline) {
		st, err := c.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{
			QueryExecutionId: aws.String(qid),
		})
		if err != nil {
			return Result{Ok: false, QueryID: qid}, fmt.Errorf("GetQueryExecution: %w", err)
		}

		state := st.QueryExecution.Status.State
		switch state {
		case athenatypes.QueryExecutionStateSucceeded:
			log.Info().Str("qid", qid).Msg("repair succeeded")
			return Result{
				Ok:        true,
				QueryID:   qid,
				State:     string(state),
				Database:  opt.Database,
				Table:     opt.Table,
				Workgroup: opt.Workgroup,
				Output:    opt.Output,
			}, nil
		case athenatypes.QueryExecutionStateFailed, athenatypes.QueryExecutionStateCancelled:
			reason := aws.ToString(st.QueryExecution.Status.StateChangeReason)
			return Result{Ok: false, QueryID: qid, State: string(state)}, fmt.Errorf("repair %s: %s", state, reason)
		}

		select {
		case <-ctx.Done():
			return Result{Ok: false, QueryID: qid}, ctx.Err()
		case <-time.After(opt.PollInterval):
		}
	}

	return Result{Ok: false, QueryID: qid, State: "TIMEOUT"}, fmt.Errorf("repair timed out waiting for qid=%s", qid)
}
