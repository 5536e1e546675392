package sqlinline

const QSelectIntegrationToken = `--sql 1afe7a83-4d7a-4ad7-9fbe-40736649fb7c
select token
from integration_tokens
where provider = $1::text
limit 1;
`

const QUpsertIntegrationToken = `--sql a5442b90-7dd0-49b4-b4a1-c93a210b1426
insert into integration_tokens (provider, token, created_at, updated_at)
values ($1::text, $2::text, now(), now())
on conflict (provider) do update set
  token = excluded.token,
  updated_at = now();
`
