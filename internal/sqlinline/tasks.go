// Package sqlinline holds every SQL statement the service executes. Each
// const carries a `--sql <uuid>` audit marker on its first line; the runner
// refuses statements without one and the sqllint tool enforces the
// convention at build time.
package sqlinline

const QCreateGenerationTask = `--sql 221e2fda-b945-4645-b912-eb76c414f34c
select create_generation_task(
  $1::text,
  $2::text,
  $3::double precision,
  $4::text,
  $5::text,
  $6::text,
  $7::int,
  $8::jsonb,
  $9::text
);
`

const QUpdateTaskID = `--sql 63061318-d9d5-4123-9f28-255f9cc51bc6
update generation_tasks
set task_id = $2,
    updated_at = now()
where task_id = $1;
`

const QDeleteTask = `--sql 49a905e9-2abe-4366-b950-ea17840a437d
delete from generation_tasks
where task_id = $1;
`

const QSelectTask = `--sql 1f81dcdd-ffa3-42dd-828e-5605ea1e1907
select
  task_id,
  coalesce(previous_task_id, ''),
  user_id,
  model_id,
  model,
  platform,
  type,
  cost,
  payload,
  coalesce(tool, ''),
  status,
  created_at,
  updated_at
from generation_tasks
where task_id = $1;
`

const QSumInFlightCost = `--sql af199750-d1f8-4b5d-b2d2-99b5e91eeae0
select coalesce(sum(cost), 0)
from generation_tasks
where user_id = $1
  and status in ('PENDING', 'PROCESSING');
`

const QRewriteTaskForFallback = `--sql 8a69be5b-dfdf-4e69-adb8-b0c683a94906
update generation_tasks
set previous_task_id = $1,
    task_id = $2,
    model_id = $3,
    model = $4,
    platform = $5,
    status = $6,
    payload = $7,
    updated_at = now()
where task_id = $1;
`
